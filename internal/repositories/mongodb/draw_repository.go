package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create creates a new draw
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	draw.CreatedAt = time.Now()
	draw.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		return err
	}
	draw.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update replaces a draw document
func (r *DrawRepository) Update(ctx context.Context, draw *models.Draw) error {
	draw.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": draw.ID}, draw)
	return err
}

// FindByNumber finds a draw by its draw number
func (r *DrawRepository) FindByNumber(ctx context.Context, drawNumber uint64) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"drawNumber": drawNumber}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrDrawNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindLatest finds the draw with the highest draw number
func (r *DrawRepository) FindLatest(ctx context.Context) (*models.Draw, error) {
	opts := options.FindOne().SetSort(bson.M{"drawNumber": -1})
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrDrawNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindAll finds all draws, newest first
func (r *DrawRepository) FindAll(ctx context.Context) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"drawNumber": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}

// FindByPhase finds draws in a given phase, newest first
func (r *DrawRepository) FindByPhase(ctx context.Context, phase models.DrawPhase) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"drawNumber": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"phase": phase}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}

// Count counts all draws
func (r *DrawRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
