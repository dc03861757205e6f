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

// LedgerRepository implements the repositories.LedgerRepository interface.
// The pooled balance lives in a singleton document in ledger_state.
type LedgerRepository struct {
	state         *mongo.Collection
	claimables    *mongo.Collection
	distributions *mongo.Collection
	transactions  *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *mongo.Database) repositories.LedgerRepository {
	return &LedgerRepository{
		state:         db.Collection("ledger_state"),
		claimables:    db.Collection("claimable_balances"),
		distributions: db.Collection("prize_distributions"),
		transactions:  db.Collection("ledger_transactions"),
	}
}

// PoolBalance returns the current pooled balance
func (r *LedgerRepository) PoolBalance(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := r.state.FindOne(ctx, bson.M{"_id": "pool_balance"}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Value, nil
}

// SetPoolBalance overwrites the pooled balance
func (r *LedgerRepository) SetPoolBalance(ctx context.Context, amount int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.state.UpdateOne(ctx,
		bson.M{"_id": "pool_balance"},
		bson.M{"$set": bson.M{"value": amount, "updatedAt": time.Now()}},
		opts,
	)
	return err
}

// AddToPool increments the pooled balance
func (r *LedgerRepository) AddToPool(ctx context.Context, amount int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.state.UpdateOne(ctx,
		bson.M{"_id": "pool_balance"},
		bson.M{
			"$inc": bson.M{"value": amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		opts,
	)
	return err
}

// Claimable returns an account's claimable balance, zero if none recorded
func (r *LedgerRepository) Claimable(ctx context.Context, account string) (int64, error) {
	var balance models.ClaimableBalance
	err := r.claimables.FindOne(ctx, bson.M{"account": account}).Decode(&balance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return balance.Amount, nil
}

// SetClaimable overwrites an account's claimable balance
func (r *LedgerRepository) SetClaimable(ctx context.Context, account string, amount int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.claimables.UpdateOne(ctx,
		bson.M{"account": account},
		bson.M{"$set": bson.M{"amount": amount, "updatedAt": time.Now()}},
		opts,
	)
	return err
}

// AddClaimable increments an account's claimable balance
func (r *LedgerRepository) AddClaimable(ctx context.Context, account string, amount int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.claimables.UpdateOne(ctx,
		bson.M{"account": account},
		bson.M{
			"$inc": bson.M{"amount": amount},
			"$set": bson.M{"updatedAt": time.Now()},
		},
		opts,
	)
	return err
}

// CreateDistribution records a distribution for audit
func (r *LedgerRepository) CreateDistribution(ctx context.Context, dist *models.PrizeDistribution) error {
	dist.CreatedAt = time.Now()
	res, err := r.distributions.InsertOne(ctx, dist)
	if err != nil {
		return err
	}
	dist.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindDistributionByDraw finds the distribution recorded for a draw
func (r *LedgerRepository) FindDistributionByDraw(ctx context.Context, drawNumber uint64) (*models.PrizeDistribution, error) {
	var dist models.PrizeDistribution
	err := r.distributions.FindOne(ctx, bson.M{"drawNumber": drawNumber}).Decode(&dist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrDistributionNotFound
		}
		return nil, err
	}
	return &dist, nil
}

// CreateTransaction records a ledger transaction
func (r *LedgerRepository) CreateTransaction(ctx context.Context, tx *models.LedgerTransaction) error {
	tx.CreatedAt = time.Now()
	res, err := r.transactions.InsertOne(ctx, tx)
	if err != nil {
		return err
	}
	tx.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindTransactionsByAccount finds an account's transactions, newest first
func (r *LedgerRepository) FindTransactionsByAccount(ctx context.Context, account string) ([]*models.LedgerTransaction, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.transactions.Find(ctx, bson.M{"account": account}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*models.LedgerTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*models.LedgerTransaction{}
	}
	return txs, nil
}
