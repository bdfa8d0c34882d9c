package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powermfg/order-reporter/internal/bigcommerce"
	"github.com/powermfg/order-reporter/internal/config"
	"github.com/powermfg/order-reporter/internal/mailer"
	"github.com/powermfg/order-reporter/internal/report"
	"github.com/powermfg/order-reporter/internal/scheduler"
)

type fakeService struct {
	result  *report.RunResult
	err     error
	fast    []bigcommerce.Order
	fastErr error
	lastRun *report.RunResult
}

func (f *fakeService) RunDailyReport(ctx context.Context, now time.Time) (*report.RunResult, error) {
	return f.result, f.err
}

func (f *fakeService) FastDeliveryOrders(ctx context.Context, now time.Time) ([]bigcommerce.Order, error) {
	return f.fast, f.fastErr
}

func (f *fakeService) LastRun() *report.RunResult {
	return f.lastRun
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("nonexistent.yaml")
	require.NoError(t, err)
	cfg.BigCommerce.StoreHash = "hash"
	cfg.BigCommerce.AccessToken = "token"
	cfg.SES.AccessKey = "ak"
	cfg.SES.SecretKey = "sk"
	return cfg
}

func newTestServer(t *testing.T, svc ReportService, sender mailer.Sender) *httptest.Server {
	t.Helper()
	cfg := testConfig(t)
	sched := scheduler.New(nil, time.UTC, cfg.Report.SendHour)
	handlers := NewHandlers(svc, sched, sender, cfg)
	server := httptest.NewServer(SetupRoutes(handlers))
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	svc := &fakeService{lastRun: &report.RunResult{RunID: "r-1", OrdersProcessed: 4}}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	require.Contains(t, body, "last_run")
}

func TestTriggerDailyOrders(t *testing.T) {
	svc := &fakeService{
		result: &report.RunResult{
			RunID:           "r-2",
			OrdersProcessed: 5,
			UrgentCount:     2,
			Delivered:       true,
		},
	}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/cron/daily-orders")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Daily orders email sent successfully", body["message"])
	assert.Equal(t, float64(5), body["ordersCount"])
	assert.Equal(t, float64(2), body["urgentCount"])
}

func TestTriggerDailyOrdersNoOrders(t *testing.T) {
	svc := &fakeService{
		result: &report.RunResult{RunID: "r-3", OrdersProcessed: 0, Delivered: false},
	}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/cron/daily-orders")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No orders found for today - email not sent", body["message"])
	assert.Equal(t, float64(0), body["ordersCount"])
}

func TestTriggerDailyOrdersSourceUnavailable(t *testing.T) {
	svc := &fakeService{err: report.ErrSourceUnavailable}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/cron/daily-orders")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "order source unavailable")
}

func TestTriggerDailyOrdersDeliveryFailure(t *testing.T) {
	svc := &fakeService{
		result: &report.RunResult{OrdersProcessed: 3, UrgentCount: 1},
		err:    report.ErrDeliveryFailed,
	}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/cron/daily-orders")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	// Delivery failed but the computed report counts are still reported
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(3), body["ordersCount"])
}

func TestCronStatus(t *testing.T) {
	server := newTestServer(t, &fakeService{}, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/cron/status")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := body["environment"].(map[string]interface{})
	assert.Equal(t, true, env["hasBigCommerceConfig"])
	assert.Equal(t, true, env["hasSESConfig"])
	assert.Equal(t, "operations@powermanufacturing.com", env["toEmail"])

	cron := body["cron"].(map[string]interface{})
	assert.Contains(t, cron["schedule"], "16:00")
	assert.NotEmpty(t, cron["nextRun"])
}

func TestTestEmail(t *testing.T) {
	sender := &fakeSender{}
	server := newTestServer(t, &fakeService{}, sender)

	resp, err := http.Post(server.URL+"/api/test-email", "application/json",
		strings.NewReader(`{"to": "ops@example.com"}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ops@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "Test Email")
}

func TestTestEmailValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing recipient", `{}`},
		{"invalid address", `{"to": "not-an-email"}`},
		{"malformed body", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			server := newTestServer(t, &fakeService{}, sender)

			resp, err := http.Post(server.URL+"/api/test-email", "application/json",
				strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, sender.sent)
		})
	}
}

func TestTestEmailSendFailure(t *testing.T) {
	server := newTestServer(t, &fakeService{}, &fakeSender{err: errors.New("ses down")})

	resp, err := http.Post(server.URL+"/api/test-email", "application/json",
		strings.NewReader(`{"to": "ops@example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestFastDeliveryOrders(t *testing.T) {
	svc := &fakeService{
		fast: []bigcommerce.Order{
			{ID: 7, ShippingMethod: "FedEx Priority Overnight"},
		},
	}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/orders/fast-delivery")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}

func TestFastDeliveryOrdersSourceError(t *testing.T) {
	svc := &fakeService{fastErr: report.ErrSourceUnavailable}
	server := newTestServer(t, svc, &fakeSender{})

	resp, err := http.Get(server.URL + "/api/orders/fast-delivery")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
