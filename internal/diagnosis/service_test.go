package diagnosis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"go.uber.org/zap"
)

type stubSource struct {
	metrics  map[string]ActualAdMetrics
	gotStart time.Time
	gotEnd   time.Time
}

var errUnknownAccount = errors.New("unknown account")

func (s *stubSource) Fetch(_ context.Context, accountID string, start, end time.Time) (ActualAdMetrics, error) {
	s.gotStart, s.gotEnd = start, end
	m, ok := s.metrics[accountID]
	if !ok {
		return ActualAdMetrics{}, errUnknownAccount
	}
	return m, nil
}

func scenarioRequest() Request {
	return Request{
		TargetRevenue:        300000,
		TargetAov:            1000,
		TargetConversionRate: 0.02,
		Cpc:                  5,
		StartDate:            "2025-01-01",
		EndDate:              "2025-01-30",
	}
}

func newTestService(t *testing.T, source MetricsSource) *Service {
	t.Helper()
	return NewService(zap.NewNop(), newTestEngine(t), source)
}

func TestServiceDiagnoseFromSource(t *testing.T) {
	source := &stubSource{metrics: map[string]ActualAdMetrics{
		"act_1": {Spend: f64(75000), Clicks: i64(15000), Conversions: i64(300), Revenue: f64(300000)},
	}}
	svc := newTestService(t, source)

	req := scenarioRequest()
	req.AccountID = "act_1"
	result, err := svc.Diagnose(context.Background(), req)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}

	if result.Comparison.TargetOrders != 300 || result.Comparison.TargetTraffic != 15000 {
		t.Errorf("unexpected targets %+v", result.Comparison)
	}
	if result.Comparison.TargetBudget != 75000 || result.Comparison.TargetRoas != 4 {
		t.Errorf("unexpected targets %+v", result.Comparison)
	}
	if result.HealthScore != 50 {
		t.Errorf("HealthScore = %d, expected 50", result.HealthScore)
	}
	if source.gotStart.Format("2006-01-02") != "2025-01-01" || source.gotEnd.Format("2006-01-02") != "2025-01-30" {
		t.Errorf("source queried for %s..%s", source.gotStart, source.gotEnd)
	}
}

func TestServiceDiagnoseInlineMetrics(t *testing.T) {
	svc := newTestService(t, nil)

	req := scenarioRequest()
	req.Actual = &ActualAdMetrics{Spend: f64(0)}
	result, err := svc.Diagnose(context.Background(), req)
	if err != nil {
		t.Fatalf("Diagnose() error = %v", err)
	}
	if result.Comparison.ActualRoas != nil {
		t.Fatal("expected ROAS to be missing with zero spend")
	}
}

func TestServiceDiagnoseErrors(t *testing.T) {
	source := &stubSource{metrics: map[string]ActualAdMetrics{"empty": {}}}
	svc := newTestService(t, source)

	tests := []struct {
		name   string
		mutate func(*Request)
		check  func(error) bool
	}{
		{
			name:   "Missing account and metrics",
			mutate: func(r *Request) {},
			check:  func(err error) bool { return errors.Is(err, apperr.InvalidInput) && apperr.FieldOf(err) == "accountId" },
		},
		{
			name:   "Unknown account",
			mutate: func(r *Request) { r.AccountID = "nope" },
			check:  func(err error) bool { return errors.Is(err, errUnknownAccount) },
		},
		{
			name:   "Account without metrics",
			mutate: func(r *Request) { r.AccountID = "empty" },
			check:  func(err error) bool { return errors.Is(err, apperr.InsufficientData) },
		},
		{
			name:   "Bad date",
			mutate: func(r *Request) { r.StartDate = "yesterday"; r.AccountID = "empty" },
			check:  func(err error) bool { return errors.Is(err, apperr.InvalidInput) && apperr.FieldOf(err) == "startDate" },
		},
		{
			name:   "Reversed range",
			mutate: func(r *Request) { r.EndDate = "2024-01-01"; r.AccountID = "empty" },
			check:  func(err error) bool { return errors.Is(err, apperr.InvalidInput) && apperr.FieldOf(err) == "endDate" },
		},
		{
			name:   "Bad targets",
			mutate: func(r *Request) { r.Cpc = 0; r.AccountID = "empty" },
			check:  func(err error) bool { return errors.Is(err, apperr.InvalidInput) && apperr.FieldOf(err) == "cpc" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scenarioRequest()
			tt.mutate(&req)
			_, err := svc.Diagnose(context.Background(), req)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}
