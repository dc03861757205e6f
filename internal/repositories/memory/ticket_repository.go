package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketRepository is an in-memory repositories.TicketRepository
type TicketRepository struct {
	mu      sync.Mutex
	seq     uint64
	tickets map[uint64]*models.Ticket
}

// NewTicketRepository creates a new in-memory TicketRepository
func NewTicketRepository() repositories.TicketRepository {
	return &TicketRepository{tickets: make(map[uint64]*models.Ticket)}
}

func (r *TicketRepository) NextSequence(ctx context.Context, count int) (uint64, error) {
	if count <= 0 {
		return 0, fmt.Errorf("sequence count must be positive, got %d", count)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	first := r.seq + 1
	r.seq += uint64(count)
	return first, nil
}

func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tickets {
		t.ID = primitive.NewObjectID()
		copied := *t
		r.tickets[t.TicketNumber] = &copied
	}
	return nil
}

func (r *TicketRepository) FindByNumber(ctx context.Context, ticketNumber uint64) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketNumber]
	if !ok {
		return nil, models.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (r *TicketRepository) FindByDraw(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tickets := make([]*models.Ticket, 0)
	for _, t := range r.tickets {
		if t.DrawNumber == drawNumber {
			copied := *t
			tickets = append(tickets, &copied)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].TicketNumber < tickets[j].TicketNumber
	})
	return tickets, nil
}

func (r *TicketRepository) UpdateTier(ctx context.Context, ticketNumber uint64, tier models.TicketTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketNumber]
	if !ok {
		return models.ErrTicketNotFound
	}
	ticket.Tier = tier
	return nil
}
