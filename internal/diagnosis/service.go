package diagnosis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/internal/planner"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
	"go.uber.org/zap"
)

// MetricsSource resolves an ad account to its metrics for a date range.
type MetricsSource interface {
	Fetch(ctx context.Context, accountID string, start, end time.Time) (ActualAdMetrics, error)
}

// Request is one diagnosis request: the business targets, the date range they
// cover and either an ad account to look up or metrics supplied inline.
type Request struct {
	TargetRevenue        float64          `json:"targetRevenue"`
	TargetAov            float64          `json:"targetAov"`
	TargetConversionRate float64          `json:"targetConversionRate"`
	Cpc                  float64          `json:"cpc"`
	StartDate            string           `json:"startDate"`
	EndDate              string           `json:"endDate"`
	AccountID            string           `json:"accountId,omitempty"`
	Actual               *ActualAdMetrics `json:"actual,omitempty"`
}

// Service derives targets with the planner's requirement calculator, resolves
// actual metrics and runs the Engine.
type Service struct {
	logger *zap.Logger
	engine *Engine
	source MetricsSource
}

// NewService wires an engine to a metrics source. source may be nil when every
// request carries its metrics inline.
func NewService(logger *zap.Logger, engine *Engine, source MetricsSource) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, engine: engine, source: source}
}

// Diagnose runs one request end to end.
func (s *Service) Diagnose(ctx context.Context, req Request) (DiagnosisResult, error) {
	start, err := datetime.ParseDate(req.StartDate)
	if err != nil {
		return DiagnosisResult{}, apperr.Invalid("startDate", "%v", err)
	}
	end, err := datetime.ParseDate(req.EndDate)
	if err != nil {
		return DiagnosisResult{}, apperr.Invalid("endDate", "%v", err)
	}

	days := datetime.DaysInclusive(start, end)
	if days < 1 {
		return DiagnosisResult{}, apperr.Invalid("endDate", "end date %s is before start date %s", req.EndDate, req.StartDate)
	}

	requirements, err := planner.CalculateRequirements(planner.RequirementInput{
		TargetRevenue:        req.TargetRevenue,
		TargetAov:            req.TargetAov,
		TargetConversionRate: req.TargetConversionRate,
		Cpc:                  req.Cpc,
	}, days)
	if err != nil {
		return DiagnosisResult{}, err
	}

	actual, err := s.resolve(ctx, req, start, end)
	if err != nil {
		return DiagnosisResult{}, err
	}

	result, err := s.engine.Diagnose(TargetsFrom(requirements), actual)
	if err != nil {
		s.logger.Info("diagnosis rejected",
			zap.String("op", "diagnosis.Service.Diagnose"),
			zap.String("account", req.AccountID),
			zap.Error(err),
		)
		return DiagnosisResult{}, err
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, req Request, start, end time.Time) (ActualAdMetrics, error) {
	if req.Actual != nil {
		return *req.Actual, nil
	}
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		return ActualAdMetrics{}, apperr.Invalid("accountId", "an ad account id or inline actual metrics are required")
	}
	if s.source == nil {
		return ActualAdMetrics{}, fmt.Errorf("no metrics source configured for account %s", accountID)
	}
	actual, err := s.source.Fetch(ctx, accountID, start, end)
	if err != nil {
		return ActualAdMetrics{}, fmt.Errorf("failed to fetch metrics for account %s: %w", accountID, err)
	}
	return actual, nil
}
