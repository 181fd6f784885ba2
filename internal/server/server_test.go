package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/campaign-planner/internal/adsource"
	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/internal/planner"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"go.uber.org/zap"
)

const planBody = `{
  "startDate": "2025-01-01",
  "endDate": "2025-01-10",
  "targetRevenue": 1000,
  "targetAov": 50,
  "targetConversionRate": 0.1,
  "cpc": 1,
  "extensions": {"campaign": "spring"}
}`

func newTestHandler(t *testing.T, maxBodySize int64) http.Handler {
	t.Helper()

	spend, clicks := 150.0, int64(180)
	source := adsource.NewMemorySource()
	source.Upsert("act_1", adsource.DailyMetrics{
		Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Spend:  &spend,
		Clicks: &clicks,
	})
	engine, err := diagnosis.NewEngine(zap.NewNop(), diagnosis.DefaultTable())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	handler, err := NewHandler(zap.NewNop(), maxBodySize, "1.2.3", Services{
		Diagnoser: diagnosis.NewService(zap.NewNop(), engine, source),
	}, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return handler
}

func do(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestHandlePlanSuccess(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := do(handler, http.MethodPost, "/api/plan", planBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp planner.PlanningResult
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalTraffic != 200 {
		t.Errorf("expected total traffic 200, got %d", resp.TotalTraffic)
	}
	if resp.TotalBudget.String() != "200.00" {
		t.Errorf("expected total budget 200.00, got %s", resp.TotalBudget)
	}
	if len(resp.DailyBudgets) != 10 {
		t.Errorf("expected 10 daily budgets, got %d", len(resp.DailyBudgets))
	}
	if string(resp.Extensions) != `{"campaign":"spring"}` {
		t.Errorf("expected extensions to pass through, got %s", resp.Extensions)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestHandlePlanIdempotent(t *testing.T) {
	handler := newTestHandler(t, 0)

	first := do(handler, http.MethodPost, "/api/plan", planBody)
	second := do(handler, http.MethodPost, "/api/plan", planBody)
	if first.Body.String() != second.Body.String() {
		t.Fatal("expected identical responses for identical requests")
	}
}

func TestHandlePlanErrors(t *testing.T) {
	handler := newTestHandler(t, 0)

	tests := []struct {
		name      string
		body      string
		status    int
		wantKind  string
		wantField string
	}{
		{
			name:      "reversed dates",
			body:      `{"startDate":"2025-01-10","endDate":"2025-01-01","targetRevenue":1000,"targetAov":50,"targetConversionRate":0.1,"cpc":1}`,
			status:    http.StatusBadRequest,
			wantKind:  "InvalidInput",
			wantField: "endDate",
		},
		{
			name:      "zero cpc",
			body:      `{"startDate":"2025-01-01","endDate":"2025-01-10","targetRevenue":1000,"targetAov":50,"targetConversionRate":0.1,"cpc":0}`,
			status:    http.StatusBadRequest,
			wantKind:  "InvalidInput",
			wantField: "cpc",
		},
		{
			name:     "malformed json",
			body:     `{"startDate":`,
			status:   http.StatusBadRequest,
			wantKind: "InvalidInput",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(handler, http.MethodPost, "/api/plan", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			resp := decodeError(t, rr)
			if resp.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, resp.Kind)
			}
			if resp.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, resp.Field)
			}
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestHandlePlanBodyTooLarge(t *testing.T) {
	handler := newTestHandler(t, 16)

	rr := do(handler, http.MethodPost, "/api/plan", planBody)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandlePlanMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := do(handler, http.MethodGet, "/api/plan", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleDiagnose(t *testing.T) {
	handler := newTestHandler(t, 0)
	targets := `"startDate":"2025-01-01","endDate":"2025-01-01","targetRevenue":1000,"targetAov":50,"targetConversionRate":0.1,"cpc":1`

	t.Run("account source", func(t *testing.T) {
		rr := do(handler, http.MethodPost, "/api/diagnose", `{`+targets+`,"accountId":"act_1"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp diagnosis.DiagnosisResult
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.HealthScore < 0 || resp.HealthScore > constants.MaxHealthScore {
			t.Errorf("health score out of range: %d", resp.HealthScore)
		}
		if resp.Comparison.ActualTraffic == nil || *resp.Comparison.ActualTraffic != 180 {
			t.Errorf("expected actual traffic 180, got %v", resp.Comparison.ActualTraffic)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		rr := do(handler, http.MethodPost, "/api/diagnose", `{`+targets+`,"accountId":"act_404"}`)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("no metrics", func(t *testing.T) {
		rr := do(handler, http.MethodPost, "/api/diagnose", `{`+targets+`,"actual":{}}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
		}
		if resp := decodeError(t, rr); resp.Kind != "InsufficientData" {
			t.Errorf("expected InsufficientData, got %q", resp.Kind)
		}
	})
}

func TestHandleVersionAndHealth(t *testing.T) {
	handler := newTestHandler(t, 0)

	rr := do(handler, http.MethodGet, "/api/version", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if payload["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", payload["version"])
	}

	rr = do(handler, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 from healthz, got %d", rr.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	handler := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t, 0)

	_ = do(handler, http.MethodPost, "/api/plan", planBody)
	rr := do(handler, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "campaign_planner_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
	if !strings.Contains(body, `route="/api/plan"`) {
		t.Errorf("expected plan route label in metrics output:\n%s", body)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(adsource.ErrAccountNotFound); got != http.StatusNotFound {
		t.Errorf("expected 404 for unknown account, got %d", got)
	}
	if got := statusFor(http.ErrBodyNotAllowed); got != http.StatusInternalServerError {
		t.Errorf("expected 500 for unclassified error, got %d", got)
	}
}
