package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/repositories"
	"github.com/lottoworks/luckydraw-backend/pkg/oracle"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RandomnessServiceImpl implements RandomnessService
var _ RandomnessService = (*RandomnessServiceImpl)(nil)

// RandomnessServiceImpl brokers randomness round trips against the external
// oracle: one outstanding request per draw, exactly-once fulfillment.
// There is no timeout or retry for an unfulfilled request; a stuck draw is
// resolved only by the administrative emergency stop.
type RandomnessServiceImpl struct {
	mu          sync.Mutex
	requestRepo repositories.RandomnessRepository
	client      *oracle.Client
	completer   DrawCompleter

	confirmations  int
	callbackBudget int64
	derivedCount   int
}

// NewRandomnessService creates a new RandomnessServiceImpl. The completion
// handler is bound separately to break the construction cycle with the
// coordinator.
func NewRandomnessService(
	requestRepo repositories.RandomnessRepository,
	client *oracle.Client,
	cfg *config.Config,
) *RandomnessServiceImpl {
	return &RandomnessServiceImpl{
		requestRepo:    requestRepo,
		client:         client,
		confirmations:  cfg.Oracle.Confirmations,
		callbackBudget: cfg.Oracle.CallbackBudget,
		derivedCount:   cfg.Lottery.DerivedValues,
	}
}

// BindCompleter wires the coordinator's completion entry point
func (s *RandomnessServiceImpl) BindCompleter(completer DrawCompleter) {
	s.completer = completer
}

// Request issues exactly one oracle request for a draw. A second request for
// the same draw fails with ErrDuplicateRequest.
func (s *RandomnessServiceImpl) Request(ctx context.Context, drawNumber uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.requestRepo.FindByDrawNumber(ctx, drawNumber)
	if err == nil {
		return "", fmt.Errorf("draw %d: %w", drawNumber, models.ErrDuplicateRequest)
	}
	if !errors.Is(err, models.ErrRequestNotFound) {
		return "", fmt.Errorf("failed to check for existing request: %w", err)
	}

	resp, err := s.client.RequestRandomness(ctx, s.confirmations, s.callbackBudget)
	if err != nil {
		slog.Error("Oracle request failed", "error", err, "drawNumber", drawNumber)
		return "", fmt.Errorf("oracle request for draw %d: %w", drawNumber, err)
	}

	request := &models.RandomnessRequest{
		RequestID:      resp.RequestID,
		DrawNumber:     drawNumber,
		Fulfilled:      false,
		Confirmations:  s.confirmations,
		CallbackBudget: s.callbackBudget,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return "", fmt.Errorf("failed to store randomness request: %w", err)
	}

	slog.Info("Randomness requested", "drawNumber", drawNumber, "requestId", resp.RequestID)
	return resp.RequestID, nil
}

// Fulfill consumes the oracle callback. The fulfilled flag is checked and
// set before any hand-off, so a replayed delivery fails with
// ErrAlreadyFulfilled regardless of the values supplied. If completion fails
// transiently the flag is rolled back, so the oracle (or the dev fulfiller)
// can redeliver once the failure clears.
func (s *RandomnessServiceImpl) Fulfill(ctx context.Context, requestID string, seedHex string) error {
	request, values, err := s.markFulfilled(ctx, requestID, seedHex)
	if err != nil {
		return err
	}

	if s.completer == nil {
		s.unmarkFulfilled(ctx, requestID)
		return fmt.Errorf("request %s: no completion handler bound", requestID)
	}
	// invoked outside the adapter lock: the coordinator takes its own lock
	// here and calls Request under it on the trigger path
	if err := s.completer.CompleteDraw(ctx, request.DrawNumber, requestID, values); err != nil {
		// phase and authorization rejections are final verdicts on this
		// delivery; anything else (a failed transfer, a repo write error)
		// may succeed on redelivery
		if !errors.Is(err, models.ErrInvalidPhase) && !errors.Is(err, models.ErrUnauthorized) {
			s.unmarkFulfilled(ctx, requestID)
		}
		slog.Error("Draw completion failed after fulfillment", "error", err,
			"requestId", requestID, "drawNumber", request.DrawNumber)
		return fmt.Errorf("completion for draw %d: %w", request.DrawNumber, err)
	}
	return nil
}

// markFulfilled validates the fulfillment and flips the monotonic flag
func (s *RandomnessServiceImpl) markFulfilled(ctx context.Context, requestID string, seedHex string) (*models.RandomnessRequest, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.requestRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Fulfilled {
		return nil, nil, fmt.Errorf("request %s: %w", requestID, models.ErrAlreadyFulfilled)
	}

	seed, err := ParseSeed(seedHex)
	if err != nil {
		return nil, nil, fmt.Errorf("request %s: %w", requestID, err)
	}

	values := DeriveValues(seed, s.derivedCount)
	request.Fulfilled = true
	request.Seed = seedHex
	request.Values = values
	request.FulfilledAt = time.Now()
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, nil, fmt.Errorf("failed to mark request fulfilled: %w", err)
	}

	slog.Info("Randomness fulfilled", "requestId", requestID, "drawNumber", request.DrawNumber)
	return request, values, nil
}

// unmarkFulfilled reverts a fulfillment whose completion failed transiently
func (s *RandomnessServiceImpl) unmarkFulfilled(ctx context.Context, requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.requestRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		slog.Error("CRITICAL: failed to load request for fulfillment rollback", "error", err, "requestId", requestID)
		return
	}
	request.Fulfilled = false
	request.Seed = ""
	request.Values = nil
	request.FulfilledAt = time.Time{}
	if err := s.requestRepo.Update(ctx, request); err != nil {
		slog.Error("CRITICAL: failed to roll back fulfillment", "error", err, "requestId", requestID)
	}
}

// GetRequestByDraw returns the request issued for a draw
func (s *RandomnessServiceImpl) GetRequestByDraw(ctx context.Context, drawNumber uint64) (*models.RandomnessRequest, error) {
	return s.requestRepo.FindByDrawNumber(ctx, drawNumber)
}
