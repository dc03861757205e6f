package repositories

import (
	"context"

	"github.com/lottoworks/luckydraw-backend/internal/models"
)

// DrawRepository defines the interface for draw persistence.
// Lookup methods return models.ErrDrawNotFound when no draw matches.
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	Update(ctx context.Context, draw *models.Draw) error
	FindByNumber(ctx context.Context, drawNumber uint64) (*models.Draw, error)
	FindLatest(ctx context.Context) (*models.Draw, error)
	FindAll(ctx context.Context) ([]*models.Draw, error)
	FindByPhase(ctx context.Context, phase models.DrawPhase) ([]*models.Draw, error)
	Count(ctx context.Context) (int64, error)
}

// TicketRepository defines the interface for ticket persistence.
// NextSequence reserves count consecutive ticket numbers and returns the
// first; allocated numbers are never reused.
type TicketRepository interface {
	NextSequence(ctx context.Context, count int) (uint64, error)
	CreateMany(ctx context.Context, tickets []*models.Ticket) error
	FindByNumber(ctx context.Context, ticketNumber uint64) (*models.Ticket, error)
	FindByDraw(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error)
	UpdateTier(ctx context.Context, ticketNumber uint64, tier models.TicketTier) error
}

// RandomnessRepository defines the interface for randomness request
// persistence. Lookups return models.ErrRequestNotFound on a miss.
type RandomnessRepository interface {
	Create(ctx context.Context, request *models.RandomnessRequest) error
	Update(ctx context.Context, request *models.RandomnessRequest) error
	FindByRequestID(ctx context.Context, requestID string) (*models.RandomnessRequest, error)
	FindByDrawNumber(ctx context.Context, drawNumber uint64) (*models.RandomnessRequest, error)
}

// LedgerRepository defines the interface for prize ledger persistence: the
// pooled balance, per-account claimable balances, distribution records and
// the transaction audit trail.
type LedgerRepository interface {
	PoolBalance(ctx context.Context) (int64, error)
	SetPoolBalance(ctx context.Context, amount int64) error
	AddToPool(ctx context.Context, amount int64) error

	Claimable(ctx context.Context, account string) (int64, error)
	SetClaimable(ctx context.Context, account string, amount int64) error
	AddClaimable(ctx context.Context, account string, amount int64) error

	CreateDistribution(ctx context.Context, dist *models.PrizeDistribution) error
	FindDistributionByDraw(ctx context.Context, drawNumber uint64) (*models.PrizeDistribution, error)

	CreateTransaction(ctx context.Context, tx *models.LedgerTransaction) error
	FindTransactionsByAccount(ctx context.Context, account string) ([]*models.LedgerTransaction, error)
}

// SettingsRepository defines the interface for runtime system settings
type SettingsRepository interface {
	FindByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	UpsertByKey(ctx context.Context, key string, value interface{}, description string) error
}
