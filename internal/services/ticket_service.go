package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TicketServiceImpl implements TicketService
var _ TicketService = (*TicketServiceImpl)(nil)

// TicketServiceImpl is the ticket registry: it allocates sequential ticket
// numbers and tracks holders and tier annotations.
type TicketServiceImpl struct {
	ticketRepo repositories.TicketRepository
}

// NewTicketService creates a new TicketServiceImpl
func NewTicketService(ticketRepo repositories.TicketRepository) *TicketServiceImpl {
	return &TicketServiceImpl{ticketRepo: ticketRepo}
}

// Issue allocates quantity consecutive ticket numbers to recipient
func (s *TicketServiceImpl) Issue(ctx context.Context, recipient string, quantity int, drawNumber uint64) ([]uint64, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, models.ErrInvalidQuantity)
	}

	first, err := s.ticketRepo.NextSequence(ctx, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate ticket numbers: %w", err)
	}

	now := time.Now()
	numbers := make([]uint64, quantity)
	tickets := make([]*models.Ticket, quantity)
	for i := 0; i < quantity; i++ {
		numbers[i] = first + uint64(i)
		tickets[i] = &models.Ticket{
			TicketNumber: numbers[i],
			DrawNumber:   drawNumber,
			Owner:        recipient,
			IssuedAt:     now,
		}
	}

	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to store tickets: %w", err)
	}

	slog.Info("Tickets issued", "recipient", recipient, "quantity", quantity, "drawNumber", drawNumber, "first", first)
	return numbers, nil
}

// OwnerOf reports the current holder of a ticket
func (s *TicketServiceImpl) OwnerOf(ctx context.Context, ticketNumber uint64) (string, error) {
	ticket, err := s.ticketRepo.FindByNumber(ctx, ticketNumber)
	if err != nil {
		return "", err
	}
	return ticket.Owner, nil
}

// MarkTier annotates a ticket with its prize tier
func (s *TicketServiceImpl) MarkTier(ctx context.Context, ticketNumber uint64, tier models.TicketTier) error {
	return s.ticketRepo.UpdateTier(ctx, ticketNumber, tier)
}

// TicketsByDraw returns all tickets sold in a draw, in issuance order
func (s *TicketServiceImpl) TicketsByDraw(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error) {
	return s.ticketRepo.FindByDraw(ctx, drawNumber)
}
