package services

import (
	"context"
	"testing"

	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"github.com/lottoworks/luckydraw-backend/internal/repositories/memory"
	"github.com/lottoworks/luckydraw-backend/pkg/paygate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Lottery: config.LotteryConfig{
			TicketPrice:         100,
			SalePeriodSeconds:   1000,
			MaxPerPurchase:      100,
			MinEntries:          10,
			NumWinners:          10,
			DerivedValues:       10,
			FeeRateBps:          300,
			MaxFeeRateBps:       1000,
			GrandPercent:        70,
			SecondaryPercent:    20,
			TreasuryPercent:     10,
			TreasuryAccount:     "treasury",
			FeeCollectorAccount: "fee-collector",
		},
		Oracle: config.OracleConfig{Mock: true, Confirmations: 3, CallbackBudget: 200000},
	}
}

func newPrizeFixture(cfg *config.Config) (*PrizeServiceImpl, *paygate.MockGateway, repositories.SettingsRepository) {
	gateway := paygate.NewMockGateway()
	settingsRepo := memory.NewSettingsRepository()
	svc := NewPrizeService(memory.NewLedgerRepository(), settingsRepo, gateway, cfg)
	return svc, gateway, settingsRepo
}

func TestPrizeServiceDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts the fee and pools the rest", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(testConfig())

		require.NoError(t, svc.Deposit(ctx, 1, 1000))

		pool, err := svc.PoolBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(970), pool)
		assert.Equal(t, int64(30), gateway.Total("fee-collector"))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(testConfig())
		assert.ErrorIs(t, svc.Deposit(ctx, 1, 0), models.ErrInvalidPayment)
		assert.ErrorIs(t, svc.Deposit(ctx, 1, -5), models.ErrInvalidPayment)
	})

	t.Run("fails when the fee push fails", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(testConfig())
		gateway.Fail["fee-collector"] = true

		err := svc.Deposit(ctx, 1, 1000)
		assert.ErrorIs(t, err, models.ErrTransferFailure)

		pool, err := svc.PoolBalance(ctx)
		require.NoError(t, err)
		assert.Zero(t, pool)
	})
}

func TestPrizeServiceDistribute(t *testing.T) {
	ctx := context.Background()
	winners := []string{"grand", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}

	noFee := testConfig()
	noFee.Lottery.FeeRateBps = 0

	t.Run("splits pool 70/20/10 and conserves every unit", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))

		dist, err := svc.Distribute(ctx, 1, winners)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), dist.NetPool)
		assert.Equal(t, int64(700), dist.GrandShare)
		assert.Equal(t, int64(200), dist.SecondaryShare)
		assert.Equal(t, int64(100), dist.TreasuryShare)
		assert.Equal(t, "grand", dist.GrandWinner)

		grand, err := svc.Claimable(ctx, "grand")
		require.NoError(t, err)
		assert.Equal(t, int64(700), grand)

		// 200 over 9 secondary winners: 22 each, the last absorbs the
		// remainder of 2
		var secondaryTotal int64
		for _, account := range winners[1:] {
			amount, err := svc.Claimable(ctx, account)
			require.NoError(t, err)
			secondaryTotal += amount
		}
		assert.Equal(t, int64(200), secondaryTotal)
		last, err := svc.Claimable(ctx, "s9")
		require.NoError(t, err)
		assert.Equal(t, int64(24), last)

		assert.Equal(t, int64(100), gateway.Total("treasury"))

		pool, err := svc.PoolBalance(ctx)
		require.NoError(t, err)
		assert.Zero(t, pool)
	})

	t.Run("odd pool still conserves", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 997))

		dist, err := svc.Distribute(ctx, 1, winners)
		require.NoError(t, err)
		assert.Equal(t, dist.NetPool, dist.GrandShare+dist.SecondaryShare+dist.TreasuryShare)

		var credited int64
		for _, account := range winners {
			amount, err := svc.Claimable(ctx, account)
			require.NoError(t, err)
			credited += amount
		}
		assert.Equal(t, dist.NetPool, credited+gateway.Total("treasury"))
	})

	t.Run("single winner folds the secondary share into the treasury", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))

		dist, err := svc.Distribute(ctx, 1, []string{"solo"})
		require.NoError(t, err)
		assert.Equal(t, int64(700), dist.GrandShare)
		assert.Zero(t, dist.SecondaryShare)
		assert.Equal(t, int64(300), dist.TreasuryShare)
		assert.Equal(t, int64(300), gateway.Total("treasury"))
	})

	t.Run("treasury failure leaves the ledger untouched", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))
		gateway.Fail["treasury"] = true

		_, err := svc.Distribute(ctx, 1, []string{"grand", "s1"})
		assert.ErrorIs(t, err, models.ErrTransferFailure)

		// no credits, no pool reset, no distribution record
		for _, account := range []string{"grand", "s1"} {
			amount, err := svc.Claimable(ctx, account)
			require.NoError(t, err)
			assert.Zero(t, amount)
		}
		pool, err := svc.PoolBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), pool)
		_, err = svc.GetDistribution(ctx, 1)
		assert.ErrorIs(t, err, models.ErrDistributionNotFound)

		// once the treasury accepts again the retry goes through whole
		gateway.Fail["treasury"] = false
		dist, err := svc.Distribute(ctx, 1, []string{"grand", "s1"})
		require.NoError(t, err)
		assert.Equal(t, int64(700), dist.GrandShare)
		assert.Equal(t, int64(100), gateway.Total("treasury"))
	})

	t.Run("rejects a second distribution for the same draw", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))

		_, err := svc.Distribute(ctx, 1, winners)
		require.NoError(t, err)
		_, err = svc.Distribute(ctx, 1, winners)
		assert.Error(t, err)
	})

	t.Run("rejects an empty winner list", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(noFee)
		_, err := svc.Distribute(ctx, 1, nil)
		assert.Error(t, err)
	})
}

func TestPrizeServiceClaim(t *testing.T) {
	ctx := context.Background()
	noFee := testConfig()
	noFee.Lottery.FeeRateBps = 0

	t.Run("pays the full balance once", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))
		_, err := svc.Distribute(ctx, 1, []string{"winner"})
		require.NoError(t, err)

		amount, err := svc.Claim(ctx, "winner")
		require.NoError(t, err)
		assert.Equal(t, int64(700), amount)
		assert.Equal(t, int64(700), gateway.Total("winner"))

		// second claim finds nothing
		amount, err = svc.Claim(ctx, "winner")
		require.NoError(t, err)
		assert.Zero(t, amount)
		assert.Equal(t, int64(700), gateway.Total("winner"))
	})

	t.Run("zero balance claims zero without failing", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(noFee)
		amount, err := svc.Claim(ctx, "nobody")
		require.NoError(t, err)
		assert.Zero(t, amount)
	})

	t.Run("restores the balance when the transfer fails", func(t *testing.T) {
		svc, gateway, _ := newPrizeFixture(noFee)
		require.NoError(t, svc.Deposit(ctx, 1, 1000))
		_, err := svc.Distribute(ctx, 1, []string{"winner"})
		require.NoError(t, err)

		gateway.Fail["winner"] = true
		_, err = svc.Claim(ctx, "winner")
		assert.ErrorIs(t, err, models.ErrTransferFailure)

		balance, err := svc.Claimable(ctx, "winner")
		require.NoError(t, err)
		assert.Equal(t, int64(700), balance)

		// a later retry succeeds
		gateway.Fail["winner"] = false
		amount, err := svc.Claim(ctx, "winner")
		require.NoError(t, err)
		assert.Equal(t, int64(700), amount)
	})
}

func TestPrizeServiceSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("fee rate is bounded", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(testConfig())
		assert.ErrorIs(t, svc.SetFeeRate(ctx, 1001), models.ErrInvalidSetting)
		assert.ErrorIs(t, svc.SetFeeRate(ctx, -1), models.ErrInvalidSetting)
		assert.NoError(t, svc.SetFeeRate(ctx, 500))
	})

	t.Run("persisted fee rate survives a restart", func(t *testing.T) {
		cfg := testConfig()
		gateway := paygate.NewMockGateway()
		settingsRepo := memory.NewSettingsRepository()
		ledgerRepo := memory.NewLedgerRepository()

		svc := NewPrizeService(ledgerRepo, settingsRepo, gateway, cfg)
		require.NoError(t, svc.SetFeeRate(ctx, 500))

		revived := NewPrizeService(ledgerRepo, settingsRepo, gateway, cfg)
		require.NoError(t, revived.Deposit(ctx, 1, 1000))
		pool, err := revived.PoolBalance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(950), pool)
	})

	t.Run("ratios must sum to 100", func(t *testing.T) {
		svc, _, _ := newPrizeFixture(testConfig())
		assert.ErrorIs(t, svc.SetDistributionRatios(ctx, 70, 20, 20), models.ErrInvalidSetting)
		assert.ErrorIs(t, svc.SetDistributionRatios(ctx, 110, -20, 10), models.ErrInvalidSetting)
		assert.NoError(t, svc.SetDistributionRatios(ctx, 60, 30, 10))
	})

	t.Run("updated ratios drive the next distribution", func(t *testing.T) {
		cfg := testConfig()
		cfg.Lottery.FeeRateBps = 0
		svc, gateway, _ := newPrizeFixture(cfg)
		require.NoError(t, svc.SetDistributionRatios(ctx, 50, 30, 20))
		require.NoError(t, svc.Deposit(ctx, 1, 1000))

		dist, err := svc.Distribute(ctx, 1, []string{"grand", "s1"})
		require.NoError(t, err)
		assert.Equal(t, int64(500), dist.GrandShare)
		assert.Equal(t, int64(300), dist.SecondaryShare)
		assert.Equal(t, int64(200), dist.TreasuryShare)
		assert.Equal(t, int64(200), gateway.Total("treasury"))
	})
}
