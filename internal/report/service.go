package report

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/mailer"
)

// OrderSource is the slice of the store client the pipeline consumes.
type OrderSource interface {
	GetOrders(ctx context.Context, query bigcommerce.OrdersQuery) ([]bigcommerce.Order, error)
	GetShippingAddresses(ctx context.Context, orderID int) ([]bigcommerce.ShippingAddress, error)
}

// Service runs the daily report pipeline: fetch, filter, enrich,
// classify, render, deliver. Each run is stateless against the source;
// only the last run's summary is kept for the status endpoints.
type Service struct {
	source OrderSource
	sender mailer.Sender
	cfg    config.ReportConfig
	limit  int
	loc    *time.Location

	mu      sync.RWMutex
	lastRun *RunResult
}

// NewService creates the report pipeline service.
func NewService(source OrderSource, sender mailer.Sender, cfg config.ReportConfig, orderLimit int, loc *time.Location) *Service {
	return &Service{
		source: source,
		sender: sender,
		cfg:    cfg,
		limit:  orderLimit,
		loc:    loc,
	}
}

// LastRun returns a copy of the most recent run's summary, or nil if no
// run has completed yet.
func (s *Service) LastRun() *RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	out := *s.lastRun
	return &out
}

// Location returns the report's local time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// fetchTodayEnriched pulls the bounded recent-orders page, narrows it to
// the current calendar day, and attaches shipping methods.
func (s *Service) fetchTodayEnriched(ctx context.Context, now time.Time) ([]bigcommerce.Order, error) {
	orders, err := s.source.GetOrders(ctx, bigcommerce.OrdersQuery{Limit: s.limit})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	today := FilterToday(orders, now, s.loc)
	log.Printf("[report] fetched %d orders, %d in today's window", len(orders), len(today))

	return Enrich(ctx, s.source, today), nil
}

// RunDailyReport executes one full pipeline run at the given instant.
// Source failure aborts the run with ErrSourceUnavailable. Individual
// enrichment failures never do. When delivery fails, the computed
// result is returned together with ErrDeliveryFailed. A day with no
// orders renders the report but skips the email.
func (s *Service) RunDailyReport(ctx context.Context, now time.Time) (*RunResult, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout())
	defer cancel()

	orders, err := s.fetchTodayEnriched(ctx, now)
	if err != nil {
		return nil, err
	}

	classified := Classify(orders, now.In(s.loc))
	htmlBody, textBody, err := Render(classified)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:           uuid.New().String(),
		GeneratedAt:     classified.GeneratedAt,
		OrdersProcessed: classified.TotalCount,
		UrgentCount:     classified.UrgentCount,
		HTML:            htmlBody,
		Text:            textBody,
	}

	if classified.TotalCount == 0 {
		log.Printf("[report] no orders for today - skipping email (run %s)", result.RunID)
		result.Duration = time.Since(started)
		s.storeRun(result)
		return result, nil
	}

	msg := mailer.Message{
		From:     s.cfg.FromEmail,
		FromName: s.cfg.FromName,
		To:       s.cfg.ToEmail,
		Subject:  fmt.Sprintf("Daily Orders Summary Report - %s", classified.GeneratedAt.Format(dateFormat)),
		HTML:     htmlBody,
		Text:     textBody,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		result.Duration = time.Since(started)
		s.storeRun(result)
		return result, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	result.Delivered = true
	result.Duration = time.Since(started)
	s.storeRun(result)

	log.Printf("[report] run %s complete: %d orders (%d urgent) in %s",
		result.RunID, result.OrdersProcessed, result.UrgentCount, result.Duration)

	return result, nil
}

// FastDeliveryOrders returns today's orders that match the broad
// expedite-keyword scan. This is a separate classification policy from
// the daily report's urgent bucket and is only exposed through the API.
func (s *Service) FastDeliveryOrders(ctx context.Context, now time.Time) ([]bigcommerce.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout())
	defer cancel()

	orders, err := s.fetchTodayEnriched(ctx, now)
	if err != nil {
		return nil, err
	}
	return FastDelivery(orders), nil
}

func (s *Service) storeRun(result *RunResult) {
	s.mu.Lock()
	s.lastRun = result
	s.mu.Unlock()
}
