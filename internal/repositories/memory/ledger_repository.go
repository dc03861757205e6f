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

// LedgerRepository is an in-memory repositories.LedgerRepository
type LedgerRepository struct {
	mu            sync.Mutex
	pool          int64
	claimables    map[string]int64
	distributions map[uint64]*models.PrizeDistribution
	transactions  []*models.LedgerTransaction
}

// NewLedgerRepository creates a new in-memory LedgerRepository
func NewLedgerRepository() repositories.LedgerRepository {
	return &LedgerRepository{
		claimables:    make(map[string]int64),
		distributions: make(map[uint64]*models.PrizeDistribution),
	}
}

func (r *LedgerRepository) PoolBalance(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pool, nil
}

func (r *LedgerRepository) SetPoolBalance(ctx context.Context, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool = amount
	return nil
}

func (r *LedgerRepository) AddToPool(ctx context.Context, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool += amount
	return nil
}

func (r *LedgerRepository) Claimable(ctx context.Context, account string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimables[account], nil
}

func (r *LedgerRepository) SetClaimable(ctx context.Context, account string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimables[account] = amount
	return nil
}

func (r *LedgerRepository) AddClaimable(ctx context.Context, account string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimables[account] += amount
	return nil
}

func (r *LedgerRepository) CreateDistribution(ctx context.Context, dist *models.PrizeDistribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dist.ID = primitive.NewObjectID()
	dist.CreatedAt = time.Now()
	copied := *dist
	r.distributions[dist.DrawNumber] = &copied
	return nil
}

func (r *LedgerRepository) FindDistributionByDraw(ctx context.Context, drawNumber uint64) (*models.PrizeDistribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dist, ok := r.distributions[drawNumber]
	if !ok {
		return nil, models.ErrDistributionNotFound
	}
	copied := *dist
	return &copied, nil
}

func (r *LedgerRepository) CreateTransaction(ctx context.Context, tx *models.LedgerTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	copied := *tx
	r.transactions = append(r.transactions, &copied)
	return nil
}

func (r *LedgerRepository) FindTransactionsByAccount(ctx context.Context, account string) ([]*models.LedgerTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txs := make([]*models.LedgerTransaction, 0)
	for _, tx := range r.transactions {
		if tx.Account == account {
			copied := *tx
			txs = append(txs, &copied)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}
