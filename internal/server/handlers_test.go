package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/zomlab/whaleboard/internal/config"
	"github.com/zomlab/whaleboard/internal/filter"
	"github.com/zomlab/whaleboard/internal/insight"
	"github.com/zomlab/whaleboard/internal/market"
	"github.com/zomlab/whaleboard/internal/mock"
	"github.com/zomlab/whaleboard/internal/service"
	"github.com/zomlab/whaleboard/internal/upstream"
)

// downSource simulates an unreachable provider so every panel serves
// synthetic data.
type downSource struct{}

func (downSource) CongressTrades(context.Context, filter.Spec) ([]market.CongressTrade, error) {
	return nil, upstream.ErrUnavailable
}
func (downSource) GreekFlow(context.Context, filter.Spec) ([]market.GreekFlow, error) {
	return nil, upstream.ErrUnavailable
}
func (downSource) Earnings(context.Context, filter.Spec) ([]market.EarningsEvent, error) {
	return nil, upstream.ErrUnavailable
}
func (downSource) InsiderTrades(context.Context, filter.Spec) ([]market.InsiderTrade, error) {
	return nil, upstream.ErrUnavailable
}
func (downSource) PremiumFlow(context.Context, filter.Spec) ([]market.PremiumFlow, error) {
	return nil, upstream.ErrUnavailable
}
func (downSource) MarketTide(context.Context, filter.Spec) ([]market.TidePoint, error) {
	return nil, upstream.ErrUnavailable
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	svc := service.New(downSource{}, mock.NewGenerator(42), insight.NewTemplateSummarizer(), logger)
	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	return NewRouter(NewServer(svc, cfg, logger), logger)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testRouter(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestPanelEndpointsServeEnvelopes(t *testing.T) {
	router := testRouter(t)

	paths := []string{
		"/api/congress-trades/data",
		"/api/greek-flow/data",
		"/api/earnings/data",
		"/api/insider-trading/data",
		"/api/premium-flow/data",
		"/api/market-tide/data",
	}

	for _, path := range paths {
		rec := get(t, router, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
			continue
		}

		var body struct {
			Data      json.RawMessage `json:"data"`
			Insight   string          `json:"insight"`
			Source    string          `json:"source"`
			RequestID string          `json:"request_id"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%s: decoding envelope: %v", path, err)
			continue
		}
		if body.Data == nil {
			t.Errorf("%s: missing data", path)
		}
		if body.Insight == "" {
			t.Errorf("%s: missing insight", path)
		}
		if body.Source != "synthetic" {
			t.Errorf("%s: expected synthetic source, got %q", path, body.Source)
		}
		if body.RequestID == "" {
			t.Errorf("%s: missing request id", path)
		}
	}
}

func TestInvalidFilterReturns400(t *testing.T) {
	router := testRouter(t)

	cases := []string{
		"/api/earnings/data?surprise_type=bogus",
		"/api/premium-flow/data?option_type=straddle",
		"/api/insider-trading/data?trade_type=hold",
		"/api/congress-trades/data?start_date=2026-08-14&end_date=2026-08-01",
	}
	for _, path := range cases {
		rec := get(t, router, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%s: decoding error body: %v", path, err)
			continue
		}
		if body["error"] == "" {
			t.Errorf("%s: expected error message", path)
		}
	}
}

func TestGreekDescriptionsEndpoint(t *testing.T) {
	rec := get(t, testRouter(t), "/api/greek-flow/descriptions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 4 {
		t.Errorf("expected 4 metric descriptions, got %d", len(body))
	}
}

func TestSectorsEndpoint(t *testing.T) {
	rec := get(t, testRouter(t), "/api/premium-flow/sectors")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Sectors      []string          `json:"sectors"`
		Descriptions map[string]string `json:"descriptions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Sectors) != 6 {
		t.Errorf("expected 6 sectors, got %d", len(body.Sectors))
	}
	for _, sector := range body.Sectors {
		if body.Descriptions[sector] == "" {
			t.Errorf("missing description for sector %s", sector)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/earnings/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
