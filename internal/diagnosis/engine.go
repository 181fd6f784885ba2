package diagnosis

import (
	"math"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine computes health scores and recommendations from a validated Table.
// It is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	table  Table
}

// NewEngine validates table once, at startup.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, table Table) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	table.Rules = append([]Rule(nil), table.Rules...)
	return &Engine{logger: logger, table: table}, nil
}

// observation is one metric with both sides present.
type observation struct {
	actual float64
	target float64
}

// Diagnose compares actual against targets. It fails with InsufficientData
// when none of the scored metrics can be derived from actual.
func (e *Engine) Diagnose(targets Targets, actual ActualAdMetrics) (DiagnosisResult, error) {
	if err := validateTargets(targets); err != nil {
		return DiagnosisResult{}, err
	}
	if err := validateActual(actual); err != nil {
		return DiagnosisResult{}, err
	}

	comparison := Comparison{
		TargetOrders:  targets.Orders,
		TargetBudget:  targets.Budget,
		TargetTraffic: targets.Traffic,
		TargetRoas:    targets.Roas,
	}
	observed := make(map[Metric]observation, len(Metrics))

	if actual.Conversions != nil {
		orders := *actual.Conversions
		comparison.ActualOrders = &orders
		observed[MetricOrders] = observation{actual: float64(orders), target: float64(targets.Orders)}
	}

	trafficSource := ""
	switch {
	case actual.Clicks != nil:
		trafficSource = TrafficSourceClicks
		traffic := *actual.Clicks
		comparison.ActualTraffic = &traffic
	case actual.Impressions != nil:
		trafficSource = TrafficSourceImpressions
		traffic := *actual.Impressions
		comparison.ActualTraffic = &traffic
	}
	if comparison.ActualTraffic != nil {
		observed[MetricTraffic] = observation{actual: float64(*comparison.ActualTraffic), target: float64(targets.Traffic)}
	}

	if actual.Spend != nil {
		spend := *actual.Spend
		comparison.ActualBudget = &spend
		observed[MetricBudget] = observation{actual: spend, target: targets.Budget}

		// ROAS is undefined without spend, so zero spend leaves it missing.
		if actual.Revenue != nil && spend > 0 {
			roas := *actual.Revenue / spend
			comparison.ActualRoas = &roas
			observed[MetricRoas] = observation{actual: roas, target: targets.Roas}
		}
	}

	result := DiagnosisResult{
		Comparison:      comparison,
		Recommendations: []string{},
		FiredRules:      []string{},
		SubScores:       make(map[Metric]float64, len(observed)),
		MissingMetrics:  []Metric{},
		TrafficSource:   trafficSource,
		DegradedTraffic: trafficSource == TrafficSourceImpressions,
	}

	weighted, weightSum := 0.0, 0.0
	for _, m := range Metrics {
		obs, ok := observed[m]
		if !ok {
			result.MissingMetrics = append(result.MissingMetrics, m)
			continue
		}
		sub := subScore(m, obs)
		result.SubScores[m] = sub
		w := e.table.Weights.Of(m)
		weighted += w * sub
		weightSum += w
	}
	if len(observed) == 0 {
		return DiagnosisResult{}, apperr.New(apperr.InsufficientData, "actualMetrics",
			"none of spend, clicks, impressions or conversions were reported")
	}
	if weightSum == 0 {
		return DiagnosisResult{}, apperr.New(apperr.InsufficientData, "actualMetrics",
			"only metrics with zero weight were reported")
	}

	score := math.Round(constants.MaxHealthScore * weighted / weightSum)
	result.HealthScore = int(mathutil.Clamp(score, 0, constants.MaxHealthScore))

	for _, rule := range e.table.Rules {
		obs, ok := observed[rule.Metric]
		if !ok {
			continue
		}
		if rule.Fires(obs.actual, obs.target) {
			result.Recommendations = append(result.Recommendations, rule.Message)
			result.FiredRules = append(result.FiredRules, rule.ID)
		}
	}

	e.logger.Debug("diagnosis computed",
		zap.String("op", "diagnosis.Diagnose"),
		zap.Int("healthScore", result.HealthScore),
		zap.Int("missing", len(result.MissingMetrics)),
		zap.Strings("rules", result.FiredRules),
		zap.Bool("degradedTraffic", result.DegradedTraffic),
	)
	return result, nil
}

// subScore maps actual/target onto [0,1], capping overshoot at MaxScoreRatio.
// Budget is scored as efficiency, target/actual, so overspend lowers it.
// Nothing was delivered at zero spend, so efficiency is scored as on target.
func subScore(m Metric, obs observation) float64 {
	var ratio float64
	if m == MetricBudget {
		if obs.actual == 0 {
			ratio = 1
		} else {
			ratio = obs.target / obs.actual
		}
	} else {
		ratio = obs.actual / obs.target
	}
	return mathutil.Clamp(ratio, 0, constants.MaxScoreRatio) / constants.MaxScoreRatio
}

func validateTargets(t Targets) error {
	if t.Orders <= 0 {
		return apperr.Invalid("targetOrders", "must be greater than zero, got %d", t.Orders)
	}
	if !(t.Budget > 0) || math.IsInf(t.Budget, 0) {
		return apperr.Invalid("targetBudget", "must be a finite number greater than zero, got %v", t.Budget)
	}
	if t.Traffic <= 0 {
		return apperr.Invalid("targetTraffic", "must be greater than zero, got %d", t.Traffic)
	}
	if !(t.Roas > 0) || math.IsInf(t.Roas, 0) {
		return apperr.Invalid("targetRoas", "must be a finite number greater than zero, got %v", t.Roas)
	}
	return nil
}

func validateActual(a ActualAdMetrics) error {
	floats := []struct {
		name  string
		value *float64
	}{{"spend", a.Spend}, {"revenue", a.Revenue}}
	for _, f := range floats {
		if f.value != nil && (*f.value < 0 || math.IsNaN(*f.value) || math.IsInf(*f.value, 0)) {
			return apperr.Invalid(f.name, "must be a finite non-negative number, got %v", *f.value)
		}
	}
	counts := []struct {
		name  string
		value *int64
	}{{"clicks", a.Clicks}, {"impressions", a.Impressions}, {"conversions", a.Conversions}}
	for _, c := range counts {
		if c.value != nil && *c.value < 0 {
			return apperr.Invalid(c.name, "cannot be negative, got %d", *c.value)
		}
	}
	return nil
}
