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
	"golang.org/x/exp/slog"
)

// Compile-time checks to ensure DrawServiceImpl implements both interfaces
var (
	_ DrawService   = (*DrawServiceImpl)(nil)
	_ DrawCompleter = (*DrawServiceImpl)(nil)
)

// DrawServiceImpl coordinates the draw lifecycle. All state transitions run
// under one mutex, so phase checks and the mutations they guard are atomic
// with respect to each other.
type DrawServiceImpl struct {
	mu           sync.Mutex
	drawRepo     repositories.DrawRepository
	settingsRepo repositories.SettingsRepository
	tickets      TicketService
	prizes       PrizeService
	randomness   RandomnessService

	ticketPrice    int64
	salePeriod     time.Duration
	maxPerPurchase int
	minEntries     int
	numWinners     int

	// replaceable for tests
	now func() time.Time
}

// NewDrawService creates a new DrawServiceImpl. Persisted settings, when
// present, override the config defaults for price and sale period.
func NewDrawService(
	drawRepo repositories.DrawRepository,
	settingsRepo repositories.SettingsRepository,
	tickets TicketService,
	prizes PrizeService,
	randomness RandomnessService,
	cfg *config.Config,
) *DrawServiceImpl {
	s := &DrawServiceImpl{
		drawRepo:       drawRepo,
		settingsRepo:   settingsRepo,
		tickets:        tickets,
		prizes:         prizes,
		randomness:     randomness,
		ticketPrice:    cfg.Lottery.TicketPrice,
		salePeriod:     time.Duration(cfg.Lottery.SalePeriodSeconds) * time.Second,
		maxPerPurchase: cfg.Lottery.MaxPerPurchase,
		minEntries:     cfg.Lottery.MinEntries,
		numWinners:     cfg.Lottery.NumWinners,
		now:            time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if setting, err := settingsRepo.FindByKey(ctx, models.SettingTicketPrice); err == nil {
		if price, ok := settingToInt64(setting.Value); ok && price > 0 {
			s.ticketPrice = price
		}
	}
	if setting, err := settingsRepo.FindByKey(ctx, models.SettingSalePeriodSeconds); err == nil {
		if seconds, ok := settingToInt64(setting.Value); ok && seconds > 0 {
			s.salePeriod = time.Duration(seconds) * time.Second
		}
	}

	return s
}

// OpenDraw opens the next draw. Only one draw is live at a time: the latest
// draw must be COMPLETED (or absent) first.
func (s *DrawServiceImpl) OpenDraw(ctx context.Context) (*models.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.drawRepo.FindLatest(ctx)
	if err != nil && !errors.Is(err, models.ErrDrawNotFound) {
		return nil, fmt.Errorf("failed to load latest draw: %w", err)
	}

	nextNumber := uint64(1)
	if latest != nil {
		if latest.Phase != models.DrawPhaseCompleted {
			return nil, fmt.Errorf("draw %d is still %s: %w", latest.DrawNumber, latest.Phase, models.ErrInvalidPhase)
		}
		nextNumber = latest.DrawNumber + 1
	}

	now := s.now()
	draw := &models.Draw{
		DrawNumber:  nextNumber,
		Phase:       models.DrawPhaseSaleOpen,
		StartTime:   now,
		EndTime:     now.Add(s.salePeriod),
		TicketPrice: s.ticketPrice,
		Entries:     []uint64{},
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	slog.Info("Draw opened", "drawNumber", draw.DrawNumber, "price", draw.TicketPrice, "endTime", draw.EndTime)
	return draw, nil
}

// Purchase sells quantity tickets to buyer for the current draw. The paid
// amount must equal price x quantity exactly; over- and underpayment are both
// rejected. A purchase arriving after the sale window has elapsed closes the
// sale and is rejected.
func (s *DrawServiceImpl) Purchase(ctx context.Context, buyer string, quantity int, amountPaid int64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draw, err := s.drawRepo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	if draw.Phase != models.DrawPhaseSaleOpen {
		return nil, fmt.Errorf("draw %d is %s: %w", draw.DrawNumber, draw.Phase, models.ErrInvalidPhase)
	}
	if s.now().After(draw.EndTime) {
		draw.Phase = models.DrawPhaseSaleClosed
		if err := s.drawRepo.Update(ctx, draw); err != nil {
			return nil, fmt.Errorf("failed to close expired sale: %w", err)
		}
		slog.Info("Sale window elapsed, draw closed", "drawNumber", draw.DrawNumber)
		return nil, fmt.Errorf("sale window for draw %d elapsed: %w", draw.DrawNumber, models.ErrInvalidPhase)
	}

	if quantity <= 0 || quantity > s.maxPerPurchase {
		return nil, fmt.Errorf("quantity %d outside [1,%d]: %w", quantity, s.maxPerPurchase, models.ErrInvalidQuantity)
	}
	expected := draw.TicketPrice * int64(quantity)
	if amountPaid != expected {
		return nil, fmt.Errorf("paid %d, expected %d: %w", amountPaid, expected, models.ErrInvalidPayment)
	}

	numbers, err := s.tickets.Issue(ctx, buyer, quantity, draw.DrawNumber)
	if err != nil {
		return nil, err
	}

	// entries are persisted before the money moves: a failed entries write
	// costs nothing, while a failed deposit rolls the entries back
	entriesBefore := draw.Entries
	draw.Entries = append(draw.Entries, numbers...)
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to record entries: %w", err)
	}
	if err := s.prizes.Deposit(ctx, draw.DrawNumber, amountPaid); err != nil {
		draw.Entries = entriesBefore
		if rerr := s.drawRepo.Update(ctx, draw); rerr != nil {
			slog.Error("CRITICAL: failed to remove entries after failed deposit",
				"error", rerr, "drawNumber", draw.DrawNumber, "buyer", buyer)
		}
		return nil, err
	}

	slog.Info("Tickets purchased", "buyer", buyer, "quantity", quantity, "drawNumber", draw.DrawNumber)
	return numbers, nil
}

// TriggerDraw closes the sale and requests randomness. Callable by anyone
// once the sale window has elapsed; the randomness adapter's one-request-
// per-draw rule makes concurrent triggers harmless.
func (s *DrawServiceImpl) TriggerDraw(ctx context.Context) (*models.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draw, err := s.drawRepo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	if draw.Phase != models.DrawPhaseSaleOpen && draw.Phase != models.DrawPhaseSaleClosed {
		return nil, fmt.Errorf("draw %d is %s: %w", draw.DrawNumber, draw.Phase, models.ErrInvalidPhase)
	}
	if s.now().Before(draw.EndTime) {
		return nil, fmt.Errorf("sale window for draw %d still open: %w", draw.DrawNumber, models.ErrInvalidPhase)
	}
	if len(draw.Entries) < s.minEntries {
		return nil, fmt.Errorf("draw %d has %d entries, need %d: %w",
			draw.DrawNumber, len(draw.Entries), s.minEntries, models.ErrInsufficientEntries)
	}

	requestID, err := s.randomness.Request(ctx, draw.DrawNumber)
	if err != nil {
		if !errors.Is(err, models.ErrDuplicateRequest) {
			return nil, err
		}
		// a prior trigger issued the request but crashed before recording
		// it on the draw; adopt the existing one instead of failing
		existing, ferr := s.randomness.GetRequestByDraw(ctx, draw.DrawNumber)
		if ferr != nil {
			return nil, fmt.Errorf("failed to recover existing request: %w", ferr)
		}
		if existing.Fulfilled {
			return nil, fmt.Errorf("draw %d: %w", draw.DrawNumber, models.ErrDuplicateRequest)
		}
		requestID = existing.RequestID
	}

	draw.Phase = models.DrawPhaseDrawing
	draw.OutstandingRequestID = requestID
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to record trigger: %w", err)
	}

	slog.Info("Draw triggered", "drawNumber", draw.DrawNumber, "requestId", requestID)
	return draw, nil
}

// CompleteDraw consumes a randomness fulfillment: selects winners, resolves
// them to ticket holders and distributes the pool. Only the outstanding
// request for a draw in DRAWING is accepted.
func (s *DrawServiceImpl) CompleteDraw(ctx context.Context, drawNumber uint64, requestID string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draw, err := s.drawRepo.FindByNumber(ctx, drawNumber)
	if err != nil {
		return err
	}
	if draw.Phase != models.DrawPhaseDrawing {
		return fmt.Errorf("draw %d is %s: %w", draw.DrawNumber, draw.Phase, models.ErrInvalidPhase)
	}
	if requestID == "" || requestID != draw.OutstandingRequestID {
		return fmt.Errorf("request %q does not match outstanding request for draw %d: %w",
			requestID, draw.DrawNumber, models.ErrUnauthorized)
	}
	if len(values) == 0 {
		return fmt.Errorf("draw %d: empty randomness values: %w", draw.DrawNumber, models.ErrInvalidSeed)
	}
	// the trigger already checked this; re-check so a bad trigger path can
	// never reach selection with too few entries
	if len(draw.Entries) < s.minEntries {
		return fmt.Errorf("draw %d has %d entries, need %d: %w",
			draw.DrawNumber, len(draw.Entries), s.minEntries, models.ErrInsufficientEntries)
	}

	seed, err := ParseSeed(values[0])
	if err != nil {
		return fmt.Errorf("draw %d: %w", draw.DrawNumber, err)
	}
	indices, err := SelectWinners(seed, len(draw.Entries), s.numWinners)
	if err != nil {
		return fmt.Errorf("winner selection for draw %d: %w", draw.DrawNumber, err)
	}

	winners := make([]string, len(indices))
	for i, idx := range indices {
		owner, err := s.tickets.OwnerOf(ctx, draw.Entries[idx])
		if err != nil {
			return fmt.Errorf("failed to resolve holder of ticket %d: %w", draw.Entries[idx], err)
		}
		winners[i] = owner
	}

	if _, err := s.prizes.Distribute(ctx, draw.DrawNumber, winners); err != nil {
		return err
	}

	// tier annotations are informational; a failed write must not undo a
	// distribution that already happened
	for i, idx := range indices {
		tier := models.TicketTierSecondary
		if i == 0 {
			tier = models.TicketTierGrand
		}
		if err := s.tickets.MarkTier(ctx, draw.Entries[idx], tier); err != nil {
			slog.Warn("Failed to mark winning ticket tier", "error", err, "ticketNumber", draw.Entries[idx])
		}
	}

	// the request id stays on the completed draw as the audit link to its
	// randomness request
	draw.Phase = models.DrawPhaseCompleted
	draw.WinningIndices = indices
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	slog.Info("Draw completed", "drawNumber", draw.DrawNumber, "winners", len(winners))
	return nil
}

// EmergencyStop forces the current draw straight to COMPLETED. No winners are
// selected and the pool is left intact for administrative resolution.
func (s *DrawServiceImpl) EmergencyStop(ctx context.Context) (*models.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draw, err := s.drawRepo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	if draw.Phase == models.DrawPhaseCompleted {
		return nil, fmt.Errorf("draw %d already completed: %w", draw.DrawNumber, models.ErrInvalidPhase)
	}

	draw.Phase = models.DrawPhaseCompleted
	draw.EmergencyStopped = true
	draw.OutstandingRequestID = ""
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return nil, fmt.Errorf("failed to record emergency stop: %w", err)
	}

	slog.Warn("Draw emergency stopped", "drawNumber", draw.DrawNumber)
	return draw, nil
}

// GetCurrentDraw returns the most recent draw
func (s *DrawServiceImpl) GetCurrentDraw(ctx context.Context) (*models.Draw, error) {
	return s.drawRepo.FindLatest(ctx)
}

// GetDrawByNumber returns a single draw
func (s *DrawServiceImpl) GetDrawByNumber(ctx context.Context, drawNumber uint64) (*models.Draw, error) {
	return s.drawRepo.FindByNumber(ctx, drawNumber)
}

// GetDraws returns all draws, newest first
func (s *DrawServiceImpl) GetDraws(ctx context.Context) ([]*models.Draw, error) {
	return s.drawRepo.FindAll(ctx)
}

// GetDrawsByPhase returns the draws currently in a phase
func (s *DrawServiceImpl) GetDrawsByPhase(ctx context.Context, phase models.DrawPhase) ([]*models.Draw, error) {
	return s.drawRepo.FindByPhase(ctx, phase)
}

// GetWinners returns the winning tickets of a completed draw, grand winner
// first by ascending index order
func (s *DrawServiceImpl) GetWinners(ctx context.Context, drawNumber uint64) ([]*models.Ticket, error) {
	draw, err := s.drawRepo.FindByNumber(ctx, drawNumber)
	if err != nil {
		return nil, err
	}
	if draw.Phase != models.DrawPhaseCompleted {
		return nil, fmt.Errorf("draw %d is %s: %w", draw.DrawNumber, draw.Phase, models.ErrInvalidPhase)
	}

	tickets, err := s.tickets.TicketsByDraw(ctx, drawNumber)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[uint64]*models.Ticket, len(tickets))
	for _, t := range tickets {
		byNumber[t.TicketNumber] = t
	}

	winners := make([]*models.Ticket, 0, len(draw.WinningIndices))
	for _, idx := range draw.WinningIndices {
		if idx < 0 || idx >= len(draw.Entries) {
			return nil, fmt.Errorf("winning index %d out of range for draw %d", idx, draw.DrawNumber)
		}
		ticket, ok := byNumber[draw.Entries[idx]]
		if !ok {
			return nil, fmt.Errorf("ticket %d: %w", draw.Entries[idx], models.ErrTicketNotFound)
		}
		winners = append(winners, ticket)
	}
	return winners, nil
}

// SetTicketPrice updates the price applied to draws opened afterwards
func (s *DrawServiceImpl) SetTicketPrice(ctx context.Context, price int64) error {
	if price <= 0 {
		return fmt.Errorf("ticket price %d: %w", price, models.ErrInvalidSetting)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settingsRepo.UpsertByKey(ctx, models.SettingTicketPrice, price,
		"Ticket price applied to newly opened draws"); err != nil {
		return fmt.Errorf("failed to persist ticket price: %w", err)
	}
	s.ticketPrice = price
	slog.Info("Ticket price updated", "price", price)
	return nil
}

// SetSalePeriod updates the sale window applied to draws opened afterwards
func (s *DrawServiceImpl) SetSalePeriod(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("sale period %ds: %w", seconds, models.ErrInvalidSetting)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.settingsRepo.UpsertByKey(ctx, models.SettingSalePeriodSeconds, int64(seconds),
		"Sale window length in seconds for newly opened draws"); err != nil {
		return fmt.Errorf("failed to persist sale period: %w", err)
	}
	s.salePeriod = time.Duration(seconds) * time.Second
	slog.Info("Sale period updated", "seconds", seconds)
	return nil
}
