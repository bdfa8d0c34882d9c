// Package report implements the daily order report pipeline: day-window
// filtering, concurrent shipping enrichment, urgency classification, and
// rendering of the HTML/plain-text report pair.
package report

import (
	"errors"
	"time"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
)

var (
	// ErrSourceUnavailable indicates the batch order fetch failed. The
	// run aborts and no report is produced.
	ErrSourceUnavailable = errors.New("order source unavailable")

	// ErrDeliveryFailed indicates the rendered report could not be
	// emailed. The report itself was computed correctly.
	ErrDeliveryFailed = errors.New("report delivery failed")
)

// Group is one shipping-method bucket of the classified report. Members
// keep their encounter order.
type Group struct {
	Method string               `json:"method"`
	Orders []bigcommerce.Order  `json:"orders"`
}

// ClassifiedReport is the partitioned view of one day's orders: every
// input order appears in exactly one place, either the urgent list or a
// single shipping-method group.
type ClassifiedReport struct {
	Urgent      []bigcommerce.Order `json:"urgent"`
	Groups      []Group             `json:"groups"`
	TotalCount  int                 `json:"total_count"`
	UrgentCount int                 `json:"urgent_count"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID           string        `json:"run_id"`
	GeneratedAt     time.Time     `json:"generated_at"`
	OrdersProcessed int           `json:"orders_processed"`
	UrgentCount     int           `json:"urgent_count"`
	HTML            string        `json:"-"`
	Text            string        `json:"-"`
	Delivered       bool          `json:"delivered"`
	Duration        time.Duration `json:"duration"`
}
