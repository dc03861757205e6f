package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawRepository is an in-memory repositories.DrawRepository, used by tests
// and local development without a MongoDB.
type DrawRepository struct {
	mu    sync.RWMutex
	draws map[uint64]*models.Draw
}

// NewDrawRepository creates a new in-memory DrawRepository
func NewDrawRepository() repositories.DrawRepository {
	return &DrawRepository{draws: make(map[uint64]*models.Draw)}
}

func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.ID = primitive.NewObjectID()
	draw.CreatedAt = time.Now()
	draw.UpdatedAt = time.Now()
	copied := *draw
	r.draws[draw.DrawNumber] = &copied
	return nil
}

func (r *DrawRepository) Update(ctx context.Context, draw *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.draws[draw.DrawNumber]; !ok {
		return models.ErrDrawNotFound
	}
	draw.UpdatedAt = time.Now()
	copied := *draw
	r.draws[draw.DrawNumber] = &copied
	return nil
}

func (r *DrawRepository) FindByNumber(ctx context.Context, drawNumber uint64) (*models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draw, ok := r.draws[drawNumber]
	if !ok {
		return nil, models.ErrDrawNotFound
	}
	copied := *draw
	return &copied, nil
}

func (r *DrawRepository) FindLatest(ctx context.Context) (*models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Draw
	for _, draw := range r.draws {
		if latest == nil || draw.DrawNumber > latest.DrawNumber {
			latest = draw
		}
	}
	if latest == nil {
		return nil, models.ErrDrawNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *DrawRepository) FindAll(ctx context.Context) ([]*models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draws := make([]*models.Draw, 0, len(r.draws))
	for _, draw := range r.draws {
		copied := *draw
		draws = append(draws, &copied)
	}
	sortDrawsDesc(draws)
	return draws, nil
}

func (r *DrawRepository) FindByPhase(ctx context.Context, phase models.DrawPhase) ([]*models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draws := make([]*models.Draw, 0)
	for _, draw := range r.draws {
		if draw.Phase == phase {
			copied := *draw
			draws = append(draws, &copied)
		}
	}
	sortDrawsDesc(draws)
	return draws, nil
}

func (r *DrawRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.draws)), nil
}

func sortDrawsDesc(draws []*models.Draw) {
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].DrawNumber > draws[j].DrawNumber
	})
}
