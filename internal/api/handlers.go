package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/mailer"
	"github.com/powermfg/order-reporter/internal/report"
	"github.com/powermfg/order-reporter/internal/scheduler"
)

// ReportService is the slice of the pipeline the HTTP layer consumes.
type ReportService interface {
	RunDailyReport(ctx context.Context, now time.Time) (*report.RunResult, error)
	FastDeliveryOrders(ctx context.Context, now time.Time) ([]bigcommerce.Order, error)
	LastRun() *report.RunResult
}

// Handlers contains all HTTP handlers
type Handlers struct {
	service ReportService
	sched   *scheduler.Scheduler
	sender  mailer.Sender
	config  *config.Config
}

// NewHandlers creates a new Handlers instance
func NewHandlers(service ReportService, sched *scheduler.Scheduler, sender mailer.Sender, cfg *config.Config) *Handlers {
	return &Handlers{
		service: service,
		sched:   sched,
		sender:  sender,
		config:  cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success":   false,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// HealthCheck reports liveness and the last pipeline run.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	if h.sched != nil {
		body["scheduler_running"] = h.sched.IsRunning()
	}
	if last := h.service.LastRun(); last != nil {
		body["last_run"] = last
	}
	respondJSON(w, http.StatusOK, body)
}

// TriggerDailyOrders runs the full daily report pipeline immediately.
// Mounted on the cron path so external cron services and manual curls
// share one endpoint.
func (h *Handlers) TriggerDailyOrders(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	result, err := h.service.RunDailyReport(r.Context(), started)
	if err != nil {
		msg := "Failed to process daily orders: " + err.Error()
		if result != nil {
			// Delivery failed after the report was computed
			respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"success":     false,
				"message":     msg,
				"ordersCount": result.OrdersProcessed,
				"urgentCount": result.UrgentCount,
				"duration":    time.Since(started).String(),
				"timestamp":   time.Now().UTC(),
			})
			return
		}
		respondError(w, http.StatusBadGateway, msg)
		return
	}

	message := "Daily orders email sent successfully"
	if !result.Delivered {
		message = "No orders found for today - email not sent"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     message,
		"runId":       result.RunID,
		"ordersCount": result.OrdersProcessed,
		"urgentCount": result.UrgentCount,
		"duration":    time.Since(started).String(),
		"timestamp":   time.Now().UTC(),
	})
}

// CronStatus reports the schedule, the next expected run, and which
// pieces of configuration are present (never their values).
func (h *Handlers) CronStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	body := map[string]interface{}{
		"success": true,
		"environment": map[string]interface{}{
			"hasBigCommerceConfig": h.config.BigCommerce.StoreHash != "" && h.config.BigCommerce.AccessToken != "",
			"hasSESConfig":         h.config.SES.AccessKey != "" && h.config.SES.SecretKey != "",
			"fromEmail":            h.config.Report.FromEmail,
			"toEmail":              h.config.Report.ToEmail,
		},
		"currentTime": map[string]interface{}{
			"utc": now.UTC(),
		},
		"endpoints": map[string]string{
			"manualCron":   "/api/cron/daily-orders",
			"cronStatus":   "/api/cron/status",
			"testEmail":    "/api/test-email",
			"fastDelivery": "/api/orders/fast-delivery",
		},
		"timestamp": now.UTC(),
	}

	if h.sched != nil {
		next := h.sched.NextRun(now)
		body["cron"] = map[string]interface{}{
			"enabled":      h.sched.IsRunning(),
			"schedule":     fmt.Sprintf("daily at %02d:00 %s", h.config.Report.SendHour, h.config.Report.Timezone),
			"nextRun":      next.UTC(),
			"nextRunLocal": next,
		}
		if loc, err := h.config.Report.Location(); err == nil {
			body["currentTime"].(map[string]interface{})["local"] = now.In(loc)
		}
	}

	respondJSON(w, http.StatusOK, body)
}

// testEmailRequest is the POST /api/test-email body.
type testEmailRequest struct {
	To string `json:"to"`
}

// TestEmail sends a short test message so operators can verify the
// delivery path without waiting for the daily run.
func (h *Handlers) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" {
		respondError(w, http.StatusBadRequest, "recipient email address is required")
		return
	}
	if _, err := mail.ParseAddress(req.To); err != nil {
		respondError(w, http.StatusBadRequest, "invalid recipient email address")
		return
	}

	now := time.Now()
	msg := mailer.Message{
		From:     h.config.Report.FromEmail,
		FromName: h.config.Report.FromName,
		To:       req.To,
		Subject:  "Power Manufacturing Orders - Test Email",
		HTML: fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #333;">Test Email</h2>
<p>This is a test email from the order reporting system.</p>
<p>If you're receiving this, the email configuration is working correctly!</p>
<p>Time: %s</p>
</div>`, now.Format(time.RFC1123)),
		Text: fmt.Sprintf("Test Email\n\nThis is a test email from the order reporting system.\nIf you're receiving this, the email configuration is working correctly!\nTime: %s\n", now.Format(time.RFC1123)),
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		respondError(w, http.StatusBadGateway, "failed to send test email: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Test email sent successfully",
		"timestamp": now.UTC(),
	})
}

// FastDeliveryOrdersHandler lists today's orders matching the broad
// expedite-keyword scan.
func (h *Handlers) FastDeliveryOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.FastDeliveryOrders(r.Context(), time.Now())
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch fast delivery orders: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"count":     len(orders),
		"orders":    orders,
		"timestamp": time.Now().UTC(),
	})
}
