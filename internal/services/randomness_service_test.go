package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories/memory"
	"github.com/lottoworks/luckydraw-backend/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completerFunc adapts a function to DrawCompleter
type completerFunc func(ctx context.Context, drawNumber uint64, requestID string, values []string) error

func (f completerFunc) CompleteDraw(ctx context.Context, drawNumber uint64, requestID string, values []string) error {
	return f(ctx, drawNumber, requestID, values)
}

const testSeedHex = "a3f1c2d4e5b6978811223344556677889900aabbccddeeff0102030405060708"

func newRandomnessFixture(completer DrawCompleter) *RandomnessServiceImpl {
	client := oracle.NewClient("", "", "default", true)
	svc := NewRandomnessService(memory.NewRandomnessRepository(), client, testConfig())
	if completer == nil {
		completer = completerFunc(func(context.Context, uint64, string, []string) error { return nil })
	}
	svc.BindCompleter(completer)
	return svc
}

func TestRandomnessServiceRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("one request per draw", func(t *testing.T) {
		svc := newRandomnessFixture(nil)

		requestID, err := svc.Request(ctx, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, requestID)

		_, err = svc.Request(ctx, 1)
		assert.ErrorIs(t, err, models.ErrDuplicateRequest)

		// a different draw is unaffected
		other, err := svc.Request(ctx, 2)
		require.NoError(t, err)
		assert.NotEqual(t, requestID, other)
	})

	t.Run("stored request is retrievable by draw", func(t *testing.T) {
		svc := newRandomnessFixture(nil)

		requestID, err := svc.Request(ctx, 7)
		require.NoError(t, err)

		request, err := svc.GetRequestByDraw(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, requestID, request.RequestID)
		assert.False(t, request.Fulfilled)
	})
}

func TestRandomnessServiceFulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("expands the seed and hands values to the completer", func(t *testing.T) {
		var gotDraw uint64
		var gotValues []string
		svc := newRandomnessFixture(completerFunc(func(_ context.Context, drawNumber uint64, _ string, values []string) error {
			gotDraw = drawNumber
			gotValues = values
			return nil
		}))

		requestID, err := svc.Request(ctx, 3)
		require.NoError(t, err)
		require.NoError(t, svc.Fulfill(ctx, requestID, testSeedHex))

		assert.Equal(t, uint64(3), gotDraw)
		require.Len(t, gotValues, 10)

		seed, err := ParseSeed(testSeedHex)
		require.NoError(t, err)
		assert.Equal(t, DeriveValues(seed, 10), gotValues)

		request, err := svc.GetRequestByDraw(ctx, 3)
		require.NoError(t, err)
		assert.True(t, request.Fulfilled)
		assert.Equal(t, testSeedHex, request.Seed)
	})

	t.Run("replayed fulfillment is rejected", func(t *testing.T) {
		calls := 0
		svc := newRandomnessFixture(completerFunc(func(context.Context, uint64, string, []string) error {
			calls++
			return nil
		}))

		requestID, err := svc.Request(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, svc.Fulfill(ctx, requestID, testSeedHex))

		err = svc.Fulfill(ctx, requestID, testSeedHex)
		assert.ErrorIs(t, err, models.ErrAlreadyFulfilled)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient completion failure reopens the request", func(t *testing.T) {
		fail := true
		svc := newRandomnessFixture(completerFunc(func(context.Context, uint64, string, []string) error {
			if fail {
				return fmt.Errorf("ledger write refused: %w", models.ErrTransferFailure)
			}
			return nil
		}))

		requestID, err := svc.Request(ctx, 1)
		require.NoError(t, err)

		err = svc.Fulfill(ctx, requestID, testSeedHex)
		assert.ErrorIs(t, err, models.ErrTransferFailure)

		request, err := svc.GetRequestByDraw(ctx, 1)
		require.NoError(t, err)
		assert.False(t, request.Fulfilled)

		// redelivery succeeds once the failure clears
		fail = false
		require.NoError(t, svc.Fulfill(ctx, requestID, testSeedHex))
	})

	t.Run("phase rejection is final", func(t *testing.T) {
		svc := newRandomnessFixture(completerFunc(func(context.Context, uint64, string, []string) error {
			return fmt.Errorf("draw 1 is COMPLETED: %w", models.ErrInvalidPhase)
		}))

		requestID, err := svc.Request(ctx, 1)
		require.NoError(t, err)

		err = svc.Fulfill(ctx, requestID, testSeedHex)
		assert.ErrorIs(t, err, models.ErrInvalidPhase)

		// the coordinator gave a final verdict; the request stays fulfilled
		request, err := svc.GetRequestByDraw(ctx, 1)
		require.NoError(t, err)
		assert.True(t, request.Fulfilled)
	})

	t.Run("unknown request", func(t *testing.T) {
		svc := newRandomnessFixture(nil)
		err := svc.Fulfill(ctx, "no-such-request", testSeedHex)
		assert.ErrorIs(t, err, models.ErrRequestNotFound)
	})

	t.Run("malformed seed leaves the request unfulfilled", func(t *testing.T) {
		svc := newRandomnessFixture(nil)
		requestID, err := svc.Request(ctx, 1)
		require.NoError(t, err)

		err = svc.Fulfill(ctx, requestID, "not-a-seed")
		assert.ErrorIs(t, err, models.ErrInvalidSeed)

		request, err := svc.GetRequestByDraw(ctx, 1)
		require.NoError(t, err)
		assert.False(t, request.Fulfilled)

		// a well-formed retry still works
		require.NoError(t, svc.Fulfill(ctx, requestID, testSeedHex))
	})
}
