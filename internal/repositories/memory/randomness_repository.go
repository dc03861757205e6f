package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RandomnessRepository is an in-memory repositories.RandomnessRepository
type RandomnessRepository struct {
	mu       sync.Mutex
	requests map[string]*models.RandomnessRequest // keyed by request id
}

// NewRandomnessRepository creates a new in-memory RandomnessRepository
func NewRandomnessRepository() repositories.RandomnessRepository {
	return &RandomnessRepository{requests: make(map[string]*models.RandomnessRequest)}
}

func (r *RandomnessRepository) Create(ctx context.Context, request *models.RandomnessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	copied := *request
	r.requests[request.RequestID] = &copied
	return nil
}

func (r *RandomnessRepository) Update(ctx context.Context, request *models.RandomnessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[request.RequestID]; !ok {
		return models.ErrRequestNotFound
	}
	copied := *request
	r.requests[request.RequestID] = &copied
	return nil
}

func (r *RandomnessRepository) FindByRequestID(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[requestID]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *RandomnessRepository) FindByDrawNumber(ctx context.Context, drawNumber uint64) (*models.RandomnessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.DrawNumber == drawNumber {
			copied := *request
			return &copied, nil
		}
	}
	return nil, models.ErrRequestNotFound
}
