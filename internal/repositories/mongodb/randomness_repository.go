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
)

// RandomnessRepository implements the repositories.RandomnessRepository interface
type RandomnessRepository struct {
	collection *mongo.Collection
}

// NewRandomnessRepository creates a new RandomnessRepository
func NewRandomnessRepository(db *mongo.Database) repositories.RandomnessRepository {
	return &RandomnessRepository{
		collection: db.Collection("randomness_requests"),
	}
}

// Create creates a new randomness request record
func (r *RandomnessRepository) Create(ctx context.Context, request *models.RandomnessRequest) error {
	request.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return err
	}
	request.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update replaces a randomness request document
func (r *RandomnessRepository) Update(ctx context.Context, request *models.RandomnessRequest) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": request.ID}, request)
	return err
}

// FindByRequestID finds a request by the oracle-assigned request id
func (r *RandomnessRepository) FindByRequestID(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	var request models.RandomnessRequest
	err := r.collection.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByDrawNumber finds the request issued for a draw
func (r *RandomnessRepository) FindByDrawNumber(ctx context.Context, drawNumber uint64) (*models.RandomnessRequest, error) {
	var request models.RandomnessRequest
	err := r.collection.FindOne(ctx, bson.M{"drawNumber": drawNumber}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}
