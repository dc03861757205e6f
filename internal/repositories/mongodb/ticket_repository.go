package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
		counters:   db.Collection("counters"),
	}
}

// NextSequence atomically reserves count consecutive ticket numbers and
// returns the first one. The counter document is upserted on first use.
func (r *TicketRepository) NextSequence(ctx context.Context, count int) (uint64, error) {
	if count <= 0 {
		return 0, fmt.Errorf("sequence count must be positive, got %d", count)
	}
	filter := bson.M{"_id": "ticket_number"}
	update := bson.M{"$inc": bson.M{"value": int64(count)}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	if err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to advance ticket sequence: %w", err)
	}
	// counter.Value is the last number of the reserved block
	return uint64(counter.Value) - uint64(count) + 1, nil
}

// CreateMany inserts a batch of tickets
func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(tickets))
	for _, t := range tickets {
		docs = append(docs, t)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByNumber finds a ticket by its ticket number
func (r *TicketRepository) FindByNumber(ctx context.Context, ticketNumber uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.collection.FindOne(ctx, bson.M{"ticketNumber": ticketNumber}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// FindByDraw finds all tickets sold in a draw, in issuance order
func (r *TicketRepository) FindByDraw(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error) {
	opts := options.Find().SetSort(bson.M{"ticketNumber": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"drawNumber": drawNumber}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// UpdateTier sets the tier annotation on a ticket
func (r *TicketRepository) UpdateTier(ctx context.Context, ticketNumber uint64, tier models.TicketTier) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"ticketNumber": ticketNumber},
		bson.M{"$set": bson.M{"tier": tier}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}
