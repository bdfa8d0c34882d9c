// Package scheduler fires the daily report at a fixed local wall-clock
// time, once per day.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/powermfg/order-reporter/internal/report"
)

// Runner is what the scheduler triggers each day.
type Runner interface {
	RunDailyReport(ctx context.Context, now time.Time) (*report.RunResult, error)
}

// Scheduler triggers a Runner once per day at a fixed hour in a fixed
// time zone.
type Scheduler struct {
	runner Runner
	loc    *time.Location
	hour   int

	mu        sync.RWMutex
	isRunning bool
	lastFire  time.Time
}

// New creates a scheduler that fires daily at the given hour in loc.
func New(runner Runner, loc *time.Location, hour int) *Scheduler {
	return &Scheduler{
		runner: runner,
		loc:    loc,
		hour:   hour,
	}
}

// NextRun returns the next scheduled fire time strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, 0, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// IsRunning reports whether the scheduling loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastFire returns when the scheduler last triggered a run (zero before
// the first fire).
func (s *Scheduler) LastFire() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFire
}

// Start runs the scheduling loop until ctx is canceled. Each iteration
// sleeps until the next fire time, runs the report, and recomputes the
// following fire time — so a slow run never causes a double fire.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()

	log.Printf("[scheduler] daily report scheduled for %02d:00 %s", s.hour, s.loc)

	for {
		next := s.NextRun(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("[scheduler] stopping")
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return
		case fired := <-timer.C:
			s.mu.Lock()
			s.lastFire = fired
			s.mu.Unlock()

			log.Printf("[scheduler] firing daily report run")
			if _, err := s.runner.RunDailyReport(ctx, fired); err != nil {
				log.Printf("[scheduler] daily report run failed: %v", err)
			}
		}
	}
}
