package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"github.com/lottoworks/luckydraw-backend/pkg/paygate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PrizeServiceImpl implements PrizeService
var _ PrizeService = (*PrizeServiceImpl)(nil)

// PrizeServiceImpl is the prize ledger. Winner payouts are pull-based
// (claimable balances); the treasury and fee collector are trusted fixed
// collaborators and are paid by direct push through the payment gateway.
type PrizeServiceImpl struct {
	mu           sync.Mutex
	ledgerRepo   repositories.LedgerRepository
	settingsRepo repositories.SettingsRepository
	gateway      paygate.Gateway

	feeRateBps    int64
	maxFeeRateBps int64
	grandPct      int64
	secondaryPct  int64
	treasuryPct   int64
	treasury      string
	feeCollector  string
}

// NewPrizeService creates a new PrizeServiceImpl, applying any persisted
// setting overrides on top of the static configuration.
func NewPrizeService(
	ledgerRepo repositories.LedgerRepository,
	settingsRepo repositories.SettingsRepository,
	gateway paygate.Gateway,
	cfg *config.Config,
) *PrizeServiceImpl {
	s := &PrizeServiceImpl{
		ledgerRepo:    ledgerRepo,
		settingsRepo:  settingsRepo,
		gateway:       gateway,
		feeRateBps:    cfg.Lottery.FeeRateBps,
		maxFeeRateBps: cfg.Lottery.MaxFeeRateBps,
		grandPct:      cfg.Lottery.GrandPercent,
		secondaryPct:  cfg.Lottery.SecondaryPercent,
		treasuryPct:   cfg.Lottery.TreasuryPercent,
		treasury:      cfg.Lottery.TreasuryAccount,
		feeCollector:  cfg.Lottery.FeeCollectorAccount,
	}
	s.hydrate(context.Background())
	return s
}

// hydrate loads persisted admin-set overrides; missing settings are fine
func (s *PrizeServiceImpl) hydrate(ctx context.Context) {
	if setting, err := s.settingsRepo.FindByKey(ctx, models.SettingFeeRateBps); err == nil {
		if bps, ok := settingToInt64(setting.Value); ok && bps >= 0 && bps <= s.maxFeeRateBps {
			s.feeRateBps = bps
		}
	}
	if setting, err := s.settingsRepo.FindByKey(ctx, models.SettingDistributionRatios); err == nil {
		if grand, secondary, treasury, ok := settingToRatios(setting.Value); ok {
			s.grandPct, s.secondaryPct, s.treasuryPct = grand, secondary, treasury
		}
	}
}

// Deposit adds a purchase payment to the pool. The protocol fee is deducted
// first and pushed to the fee collector.
func (s *PrizeServiceImpl) Deposit(ctx context.Context, drawNumber uint64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return fmt.Errorf("deposit amount %d: %w", amount, models.ErrInvalidPayment)
	}

	fee := amount * s.feeRateBps / 10000
	net := amount - fee

	if fee > 0 {
		ref, err := s.gateway.Transfer(ctx, s.feeCollector, fee)
		if err != nil {
			slog.Error("Fee transfer failed", "error", err, "drawNumber", drawNumber, "fee", fee)
			return fmt.Errorf("fee transfer: %w", models.ErrTransferFailure)
		}
		s.recordTx(ctx, &models.LedgerTransaction{
			Type: models.TxTypeFee, DrawNumber: drawNumber, Account: s.feeCollector, Amount: fee, Reference: ref,
		})
	}

	if err := s.ledgerRepo.AddToPool(ctx, net); err != nil {
		return fmt.Errorf("failed to add deposit to pool: %w", err)
	}
	s.recordTx(ctx, &models.LedgerTransaction{
		Type: models.TxTypeDeposit, DrawNumber: drawNumber, Amount: net,
	})

	slog.Info("Deposit recorded", "drawNumber", drawNumber, "amount", amount, "fee", fee, "net", net)
	return nil
}

// Distribute splits the pooled balance across the winners and the treasury
// and resets the pool. The treasury share is computed by subtraction so the
// three shares sum to the pool exactly.
func (s *PrizeServiceImpl) Distribute(ctx context.Context, drawNumber uint64, winners []string) (*models.PrizeDistribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(winners) == 0 {
		return nil, fmt.Errorf("distribution needs at least one winner")
	}
	if existing, err := s.ledgerRepo.FindDistributionByDraw(ctx, drawNumber); err == nil {
		slog.Warn("Distribution already recorded for draw", "drawNumber", drawNumber)
		return existing, fmt.Errorf("draw %d: distribution already recorded", drawNumber)
	}

	pool, err := s.ledgerRepo.PoolBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool balance: %w", err)
	}

	grandShare := pool * s.grandPct / 100
	secondaryShare := pool * s.secondaryPct / 100
	treasuryShare := pool - grandShare - secondaryShare

	secondaryWinners := winners[1:]
	if len(secondaryWinners) == 0 {
		// nobody to receive the secondary share; it stays with the treasury
		treasuryShare += secondaryShare
		secondaryShare = 0
	}

	// the treasury push is the only step that can fail, so it goes first: a
	// rejected transfer leaves the pool and every claimable untouched and the
	// whole distribution can be retried
	if treasuryShare > 0 {
		ref, err := s.gateway.Transfer(ctx, s.treasury, treasuryShare)
		if err != nil {
			slog.Error("Treasury transfer failed", "error", err, "drawNumber", drawNumber, "amount", treasuryShare)
			return nil, fmt.Errorf("treasury transfer: %w", models.ErrTransferFailure)
		}
		s.recordTx(ctx, &models.LedgerTransaction{
			Type: models.TxTypeTreasury, DrawNumber: drawNumber, Account: s.treasury, Amount: treasuryShare, Reference: ref,
		})
	}

	if err := s.credit(ctx, drawNumber, winners[0], grandShare); err != nil {
		return nil, err
	}
	if len(secondaryWinners) > 0 {
		per := secondaryShare / int64(len(secondaryWinners))
		remainder := secondaryShare - per*int64(len(secondaryWinners))
		for i, account := range secondaryWinners {
			amount := per
			if i == len(secondaryWinners)-1 {
				// integer-division remainder goes to the last secondary
				// winner so credits sum exactly to the recorded shares
				amount += remainder
			}
			if err := s.credit(ctx, drawNumber, account, amount); err != nil {
				return nil, err
			}
		}
	}

	if err := s.ledgerRepo.SetPoolBalance(ctx, 0); err != nil {
		return nil, fmt.Errorf("failed to reset pool: %w", err)
	}

	dist := &models.PrizeDistribution{
		DrawNumber:       drawNumber,
		NetPool:          pool,
		GrandShare:       grandShare,
		SecondaryShare:   secondaryShare,
		TreasuryShare:    treasuryShare,
		GrandWinner:      winners[0],
		SecondaryWinners: secondaryWinners,
	}
	if err := s.ledgerRepo.CreateDistribution(ctx, dist); err != nil {
		return nil, fmt.Errorf("failed to record distribution: %w", err)
	}

	slog.Info("Prize distribution recorded", "drawNumber", drawNumber, "pool", pool,
		"grand", grandShare, "secondary", secondaryShare, "treasury", treasuryShare)
	return dist, nil
}

// Claim pays out the caller's full claimable balance. The balance is zeroed
// before the transfer so a reentrant claim observes nothing to take; a
// failed transfer restores it.
func (s *PrizeServiceImpl) Claim(ctx context.Context, account string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.ledgerRepo.Claimable(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("failed to read claimable balance: %w", err)
	}
	if amount == 0 {
		return 0, nil
	}

	if err := s.ledgerRepo.SetClaimable(ctx, account, 0); err != nil {
		return 0, fmt.Errorf("failed to reserve claim: %w", err)
	}

	ref, err := s.gateway.Transfer(ctx, account, amount)
	if err != nil {
		if restoreErr := s.ledgerRepo.SetClaimable(ctx, account, amount); restoreErr != nil {
			slog.Error("CRITICAL: failed to restore claimable after failed transfer",
				"error", restoreErr, "account", account, "amount", amount)
		}
		slog.Error("Claim transfer failed", "error", err, "account", account, "amount", amount)
		return 0, fmt.Errorf("claim transfer: %w", models.ErrTransferFailure)
	}

	s.recordTx(ctx, &models.LedgerTransaction{
		Type: models.TxTypeClaim, Account: account, Amount: amount, Reference: ref,
	})
	slog.Info("Claim paid", "account", account, "amount", amount, "reference", ref)
	return amount, nil
}

// Claimable returns an account's claimable balance
func (s *PrizeServiceImpl) Claimable(ctx context.Context, account string) (int64, error) {
	return s.ledgerRepo.Claimable(ctx, account)
}

// PoolBalance returns the current pooled balance
func (s *PrizeServiceImpl) PoolBalance(ctx context.Context) (int64, error) {
	return s.ledgerRepo.PoolBalance(ctx)
}

// GetDistribution returns the distribution recorded for a draw
func (s *PrizeServiceImpl) GetDistribution(ctx context.Context, drawNumber uint64) (*models.PrizeDistribution, error) {
	return s.ledgerRepo.FindDistributionByDraw(ctx, drawNumber)
}

// GetTransactions returns the audit rows touching an account, newest first
func (s *PrizeServiceImpl) GetTransactions(ctx context.Context, account string) ([]*models.LedgerTransaction, error) {
	return s.ledgerRepo.FindTransactionsByAccount(ctx, account)
}

// SetFeeRate updates the protocol fee rate, bounded by the configured maximum
func (s *PrizeServiceImpl) SetFeeRate(ctx context.Context, bps int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bps < 0 || bps > s.maxFeeRateBps {
		return fmt.Errorf("fee rate %d bps outside [0,%d]: %w", bps, s.maxFeeRateBps, models.ErrInvalidSetting)
	}
	if err := s.settingsRepo.UpsertByKey(ctx, models.SettingFeeRateBps, bps, "protocol fee rate in basis points"); err != nil {
		return fmt.Errorf("failed to persist fee rate: %w", err)
	}
	s.feeRateBps = bps
	slog.Info("Fee rate updated", "bps", bps)
	return nil
}

// SetDistributionRatios updates the grand/secondary/treasury split; the
// three percentages must sum to 100
func (s *PrizeServiceImpl) SetDistributionRatios(ctx context.Context, grand, secondary, treasury int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if grand < 0 || secondary < 0 || treasury < 0 || grand+secondary+treasury != 100 {
		return fmt.Errorf("ratios %d/%d/%d must be non-negative and sum to 100: %w",
			grand, secondary, treasury, models.ErrInvalidSetting)
	}
	ratios := models.DistributionRatios{GrandPercent: grand, SecondaryPercent: secondary, TreasuryPercent: treasury}
	if err := s.settingsRepo.UpsertByKey(ctx, models.SettingDistributionRatios, ratios, "prize distribution percentages"); err != nil {
		return fmt.Errorf("failed to persist distribution ratios: %w", err)
	}
	s.grandPct, s.secondaryPct, s.treasuryPct = grand, secondary, treasury
	slog.Info("Distribution ratios updated", "grand", grand, "secondary", secondary, "treasury", treasury)
	return nil
}

// credit adds amount to an account's claimable balance
func (s *PrizeServiceImpl) credit(ctx context.Context, drawNumber uint64, account string, amount int64) error {
	if amount == 0 {
		return nil
	}
	if err := s.ledgerRepo.AddClaimable(ctx, account, amount); err != nil {
		return fmt.Errorf("failed to credit %s: %w", account, err)
	}
	s.recordTx(ctx, &models.LedgerTransaction{
		Type: models.TxTypeCredit, DrawNumber: drawNumber, Account: account, Amount: amount,
	})
	return nil
}

// recordTx writes an audit row; audit failures are logged, not fatal
func (s *PrizeServiceImpl) recordTx(ctx context.Context, tx *models.LedgerTransaction) {
	if err := s.ledgerRepo.CreateTransaction(ctx, tx); err != nil {
		slog.Error("Failed to record ledger transaction", "error", err, "type", tx.Type, "account", tx.Account)
	}
}

// settingToInt64 converts a persisted setting value (Mongo may hand back
// int32, int64 or float64) to int64
func settingToInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// settingToRatios converts a persisted ratios value back to its three parts.
// Mongo hands documents back as primitive.D or primitive.M depending on the
// decode path, so all shapes are accepted.
func settingToRatios(value interface{}) (int64, int64, int64, bool) {
	var m map[string]interface{}
	switch v := value.(type) {
	case models.DistributionRatios:
		return v.GrandPercent, v.SecondaryPercent, v.TreasuryPercent, true
	case map[string]interface{}:
		m = v
	case primitive.M:
		m = v
	case primitive.D:
		m = v.Map()
	default:
		return 0, 0, 0, false
	}
	grand, ok1 := settingToInt64(m["grandPercent"])
	secondary, ok2 := settingToInt64(m["secondaryPercent"])
	treasury, ok3 := settingToInt64(m["treasuryPercent"])
	return grand, secondary, treasury, ok1 && ok2 && ok3
}
