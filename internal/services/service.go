package services

import (
	"context"

	"github.com/lottoworks/luckydraw-backend/internal/models"
)

// DrawService owns the draw lifecycle state machine
type DrawService interface {
	// OpenDraw opens a new draw. Rejected while a previous draw is not
	// yet COMPLETED.
	OpenDraw(ctx context.Context) (*models.Draw, error)

	// Purchase sells quantity tickets to buyer. The paid amount must
	// equal price x quantity exactly.
	Purchase(ctx context.Context, buyer string, quantity int, amountPaid int64) ([]uint64, error)

	// TriggerDraw closes the sale and issues the randomness request
	TriggerDraw(ctx context.Context) (*models.Draw, error)

	// CompleteDraw consumes a randomness fulfillment. Called only by the
	// randomness adapter; the request id must match the draw's
	// outstanding request.
	CompleteDraw(ctx context.Context, drawNumber uint64, requestID string, values []string) error

	// EmergencyStop forces the current draw to COMPLETED without
	// selection or distribution
	EmergencyStop(ctx context.Context) (*models.Draw, error)

	GetCurrentDraw(ctx context.Context) (*models.Draw, error)
	GetDrawByNumber(ctx context.Context, drawNumber uint64) (*models.Draw, error)
	GetDraws(ctx context.Context) ([]*models.Draw, error)
	GetDrawsByPhase(ctx context.Context, phase models.DrawPhase) ([]*models.Draw, error)
	GetWinners(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error)

	// Administrative setters; applied to draws opened afterwards
	SetTicketPrice(ctx context.Context, price int64) error
	SetSalePeriod(ctx context.Context, seconds int) error
}

// RandomnessService brokers oracle randomness requests
type RandomnessService interface {
	// Request issues exactly one oracle request for a draw and returns
	// the oracle-assigned request id
	Request(ctx context.Context, drawNumber uint64) (string, error)

	// Fulfill consumes the oracle callback: expands the seed, marks the
	// request fulfilled and hands the derived values to the coordinator
	Fulfill(ctx context.Context, requestID string, seedHex string) error

	GetRequestByDraw(ctx context.Context, drawNumber uint64) (*models.RandomnessRequest, error)
}

// PrizeService is the prize ledger: pooled funds, distribution splits and
// pull-based claims
type PrizeService interface {
	// Deposit adds a purchase payment to the pool, net of the protocol fee
	Deposit(ctx context.Context, drawNumber uint64, amount int64) error

	// Distribute splits the pool across winners[0] (grand), winners[1:]
	// (secondary) and the treasury, and resets the pool
	Distribute(ctx context.Context, drawNumber uint64, winners []string) (*models.PrizeDistribution, error)

	// Claim pays out the account's full claimable balance and returns the
	// amount paid. A zero balance claims zero without failing.
	Claim(ctx context.Context, account string) (int64, error)

	Claimable(ctx context.Context, account string) (int64, error)
	PoolBalance(ctx context.Context) (int64, error)
	GetDistribution(ctx context.Context, drawNumber uint64) (*models.PrizeDistribution, error)
	GetTransactions(ctx context.Context, account string) ([]*models.LedgerTransaction, error)

	SetFeeRate(ctx context.Context, bps int64) error
	SetDistributionRatios(ctx context.Context, grand, secondary, treasury int64) error
}

// TicketService is the ticket registry boundary
type TicketService interface {
	// Issue allocates quantity strictly-increasing ticket numbers to
	// recipient for a draw
	Issue(ctx context.Context, recipient string, quantity int, drawNumber uint64) ([]uint64, error)

	// OwnerOf reports the holder of a ticket
	OwnerOf(ctx context.Context, ticketNumber uint64) (string, error)

	// MarkTier annotates a ticket after selection; failures are treated
	// as non-fatal by callers
	MarkTier(ctx context.Context, ticketNumber uint64, tier models.TicketTier) error

	TicketsByDraw(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error)
}

// AuthService authenticates the administrative surface
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// DrawCompleter is the completion entry point the randomness adapter invokes
// once a request is fulfilled
type DrawCompleter interface {
	CompleteDraw(ctx context.Context, drawNumber uint64, requestID string, values []string) error
}
