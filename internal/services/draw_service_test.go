package services

import (
	"context"
	"testing"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories/memory"
	"github.com/lottoworks/luckydraw-backend/pkg/oracle"
	"github.com/lottoworks/luckydraw-backend/pkg/paygate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawFixture wires the full service stack over in-memory repositories with
// a controllable clock
type drawFixture struct {
	cfg        *config.Config
	draws      *DrawServiceImpl
	randomness *RandomnessServiceImpl
	prizes     *PrizeServiceImpl
	tickets    TicketService
	gateway    *paygate.MockGateway
	now        time.Time
}

func newDrawFixture(cfg *config.Config) *drawFixture {
	f := &drawFixture{
		cfg:     cfg,
		gateway: paygate.NewMockGateway(),
		now:     time.Unix(1_700_000_000, 0),
	}

	settingsRepo := memory.NewSettingsRepository()
	f.tickets = NewTicketService(memory.NewTicketRepository())
	f.prizes = NewPrizeService(memory.NewLedgerRepository(), settingsRepo, f.gateway, cfg)
	f.randomness = NewRandomnessService(memory.NewRandomnessRepository(), oracle.NewClient("", "", "default", true), cfg)
	f.draws = NewDrawService(memory.NewDrawRepository(), settingsRepo, f.tickets, f.prizes, f.randomness, cfg)
	f.randomness.BindCompleter(f.draws)

	f.draws.now = func() time.Time { return f.now }
	return f
}

func (f *drawFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// runSale opens a draw and sells ten tickets to three buyers
func (f *drawFixture) runSale(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)
	_, err = f.draws.Purchase(ctx, "alice", 5, 500)
	require.NoError(t, err)
	_, err = f.draws.Purchase(ctx, "bob", 3, 300)
	require.NoError(t, err)
	_, err = f.draws.Purchase(ctx, "carol", 2, 200)
	require.NoError(t, err)
}

func TestDrawLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	draw, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), draw.DrawNumber)
	assert.Equal(t, models.DrawPhaseSaleOpen, draw.Phase)
	assert.Equal(t, f.now.Add(1000*time.Second), draw.EndTime)

	// a second live draw is not allowed
	_, err = f.draws.OpenDraw(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	tickets, err := f.draws.Purchase(ctx, "alice", 5, 500)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, tickets)
	_, err = f.draws.Purchase(ctx, "bob", 3, 300)
	require.NoError(t, err)
	_, err = f.draws.Purchase(ctx, "carol", 2, 200)
	require.NoError(t, err)

	// pool holds the deposits net of the 3% fee
	pool, err := f.prizes.PoolBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(970), pool)
	assert.Equal(t, int64(30), f.gateway.Total("fee-collector"))

	// the sale window is still open
	_, err = f.draws.TriggerDraw(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	f.advance(1001 * time.Second)

	// a late purchase closes the sale and is rejected
	_, err = f.draws.Purchase(ctx, "dave", 1, 100)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)
	draw, err = f.draws.GetCurrentDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DrawPhaseSaleClosed, draw.Phase)

	draw, err = f.draws.TriggerDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DrawPhaseDrawing, draw.Phase)
	require.NotEmpty(t, draw.OutstandingRequestID)
	requestID := draw.OutstandingRequestID

	// the draw is already in flight
	_, err = f.draws.TriggerDraw(ctx)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)

	require.NoError(t, f.randomness.Fulfill(ctx, requestID, testSeedHex))

	draw, err = f.draws.GetDrawByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DrawPhaseCompleted, draw.Phase)
	// the request id stays on the completed draw as the audit link
	assert.Equal(t, requestID, draw.OutstandingRequestID)
	require.Len(t, draw.WinningIndices, 10)
	for i, idx := range draw.WinningIndices {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 10)
		if i > 0 {
			assert.Greater(t, idx, draw.WinningIndices[i-1])
		}
	}

	dist, err := f.prizes.GetDistribution(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(970), dist.NetPool)
	assert.Equal(t, int64(679), dist.GrandShare)
	assert.Equal(t, int64(194), dist.SecondaryShare)
	assert.Equal(t, int64(97), dist.TreasuryShare)
	assert.Equal(t, dist.NetPool, dist.GrandShare+dist.SecondaryShare+dist.TreasuryShare)
	assert.Equal(t, int64(97), f.gateway.Total("treasury"))

	// with ten entries and ten winners everyone wins; credits plus the
	// treasury push account for the whole pool
	var credited int64
	for _, account := range []string{"alice", "bob", "carol"} {
		amount, err := f.prizes.Claimable(ctx, account)
		require.NoError(t, err)
		credited += amount
	}
	assert.Equal(t, int64(873), credited)

	pool, err = f.prizes.PoolBalance(ctx)
	require.NoError(t, err)
	assert.Zero(t, pool)

	winners, err := f.draws.GetWinners(ctx, 1)
	require.NoError(t, err)
	require.Len(t, winners, 10)
	assert.Equal(t, models.TicketTierGrand, winners[0].Tier)
	for _, w := range winners[1:] {
		assert.Equal(t, models.TicketTierSecondary, w.Tier)
	}

	// a replayed fulfillment changes nothing
	err = f.randomness.Fulfill(ctx, requestID, testSeedHex)
	assert.ErrorIs(t, err, models.ErrAlreadyFulfilled)
}

func TestDrawPurchaseValidation(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	// no draw opened yet
	_, err := f.draws.Purchase(ctx, "alice", 1, 100)
	assert.ErrorIs(t, err, models.ErrDrawNotFound)

	_, err = f.draws.OpenDraw(ctx)
	require.NoError(t, err)

	t.Run("payment must be exact", func(t *testing.T) {
		_, err := f.draws.Purchase(ctx, "alice", 2, 199)
		assert.ErrorIs(t, err, models.ErrInvalidPayment)
		_, err = f.draws.Purchase(ctx, "alice", 2, 201)
		assert.ErrorIs(t, err, models.ErrInvalidPayment)
		_, err = f.draws.Purchase(ctx, "alice", 2, 200)
		assert.NoError(t, err)
	})

	t.Run("quantity bounds", func(t *testing.T) {
		_, err := f.draws.Purchase(ctx, "alice", 0, 0)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
		_, err = f.draws.Purchase(ctx, "alice", -1, -100)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
		_, err = f.draws.Purchase(ctx, "alice", 101, 10100)
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	})
}

func TestDrawTriggerRequiresEnoughEntries(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	_, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)
	_, err = f.draws.Purchase(ctx, "alice", 5, 500)
	require.NoError(t, err)

	f.advance(1001 * time.Second)

	_, err = f.draws.TriggerDraw(ctx)
	assert.ErrorIs(t, err, models.ErrInsufficientEntries)
}

func TestDrawTriggerRecoversExistingRequest(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())
	f.runSale(t)
	f.advance(1001 * time.Second)

	// a request already exists, as if an earlier trigger died between the
	// oracle call and recording the id on the draw
	requestID, err := f.randomness.Request(ctx, 1)
	require.NoError(t, err)

	draw, err := f.draws.TriggerDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, requestID, draw.OutstandingRequestID)
	assert.Equal(t, models.DrawPhaseDrawing, draw.Phase)
}

func TestDrawCompleteRejectsWrongRequest(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())
	f.runSale(t)
	f.advance(1001 * time.Second)

	draw, err := f.draws.TriggerDraw(ctx)
	require.NoError(t, err)

	seed, err := ParseSeed(testSeedHex)
	require.NoError(t, err)
	values := DeriveValues(seed, 10)

	err = f.draws.CompleteDraw(ctx, 1, "forged-request-id", values)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// the draw is untouched and the real request still completes it
	require.NoError(t, f.draws.CompleteDraw(ctx, 1, draw.OutstandingRequestID, values))
}

func TestDrawFulfillRetriesAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())
	f.runSale(t)
	f.advance(1001 * time.Second)

	draw, err := f.draws.TriggerDraw(ctx)
	require.NoError(t, err)
	requestID := draw.OutstandingRequestID

	// the treasury rejects, so completion fails after the callback arrives
	f.gateway.Fail["treasury"] = true
	err = f.randomness.Fulfill(ctx, requestID, testSeedHex)
	assert.ErrorIs(t, err, models.ErrTransferFailure)

	// nothing moved: the draw is still drawing, the request is open again
	// and no winner was credited
	draw, err = f.draws.GetDrawByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DrawPhaseDrawing, draw.Phase)
	request, err := f.randomness.GetRequestByDraw(ctx, 1)
	require.NoError(t, err)
	assert.False(t, request.Fulfilled)
	for _, account := range []string{"alice", "bob", "carol"} {
		amount, err := f.prizes.Claimable(ctx, account)
		require.NoError(t, err)
		assert.Zero(t, amount)
	}
	pool, err := f.prizes.PoolBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(970), pool)

	// redelivery completes the draw once the failure clears
	f.gateway.Fail["treasury"] = false
	require.NoError(t, f.randomness.Fulfill(ctx, requestID, testSeedHex))

	draw, err = f.draws.GetDrawByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DrawPhaseCompleted, draw.Phase)
	assert.Equal(t, int64(97), f.gateway.Total("treasury"))
}

func TestDrawPurchaseRollsBackEntriesOnFailedDeposit(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	_, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)

	// the fee push fails, so the deposit fails after entries were written
	f.gateway.Fail["fee-collector"] = true
	_, err = f.draws.Purchase(ctx, "alice", 5, 500)
	assert.ErrorIs(t, err, models.ErrTransferFailure)

	draw, err := f.draws.GetCurrentDraw(ctx)
	require.NoError(t, err)
	assert.Empty(t, draw.Entries)
	pool, err := f.prizes.PoolBalance(ctx)
	require.NoError(t, err)
	assert.Zero(t, pool)

	// a later purchase is unaffected
	f.gateway.Fail["fee-collector"] = false
	numbers, err := f.draws.Purchase(ctx, "alice", 5, 500)
	require.NoError(t, err)
	draw, err = f.draws.GetCurrentDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, numbers, draw.Entries)
}

func TestDrawEmergencyStop(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	t.Run("stops a live sale", func(t *testing.T) {
		_, err := f.draws.OpenDraw(ctx)
		require.NoError(t, err)

		draw, err := f.draws.EmergencyStop(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DrawPhaseCompleted, draw.Phase)
		assert.True(t, draw.EmergencyStopped)
		assert.Empty(t, draw.WinningIndices)

		// the next draw can open
		next, err := f.draws.OpenDraw(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), next.DrawNumber)
	})

	t.Run("a fulfillment after the stop is rejected", func(t *testing.T) {
		for _, buyer := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
			_, err := f.draws.Purchase(ctx, buyer, 1, 100)
			require.NoError(t, err)
		}
		f.advance(1001 * time.Second)
		draw, err := f.draws.TriggerDraw(ctx)
		require.NoError(t, err)

		_, err = f.draws.EmergencyStop(ctx)
		require.NoError(t, err)

		err = f.randomness.Fulfill(ctx, draw.OutstandingRequestID, testSeedHex)
		assert.ErrorIs(t, err, models.ErrInvalidPhase)

		stopped, err := f.draws.GetDrawByNumber(ctx, draw.DrawNumber)
		require.NoError(t, err)
		assert.True(t, stopped.EmergencyStopped)
		assert.Empty(t, stopped.WinningIndices)
	})

	t.Run("cannot stop a completed draw", func(t *testing.T) {
		_, err := f.draws.EmergencyStop(ctx)
		assert.ErrorIs(t, err, models.ErrInvalidPhase)
	})
}

func TestDrawAdminSettings(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	require.NoError(t, f.draws.SetTicketPrice(ctx, 250))
	require.NoError(t, f.draws.SetSalePeriod(ctx, 60))

	assert.ErrorIs(t, f.draws.SetTicketPrice(ctx, 0), models.ErrInvalidSetting)
	assert.ErrorIs(t, f.draws.SetSalePeriod(ctx, -1), models.ErrInvalidSetting)

	draw, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), draw.TicketPrice)
	assert.Equal(t, f.now.Add(60*time.Second), draw.EndTime)

	_, err = f.draws.Purchase(ctx, "alice", 2, 200)
	assert.ErrorIs(t, err, models.ErrInvalidPayment)
	_, err = f.draws.Purchase(ctx, "alice", 2, 500)
	assert.NoError(t, err)
}

func TestDrawGetWinnersRequiresCompletion(t *testing.T) {
	ctx := context.Background()
	f := newDrawFixture(testConfig())

	_, err := f.draws.OpenDraw(ctx)
	require.NoError(t, err)

	_, err = f.draws.GetWinners(ctx, 1)
	assert.ErrorIs(t, err, models.ErrInvalidPhase)
}
