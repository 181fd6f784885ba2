// Package diagnosis scores a live ad account against the planner's targets and
// turns the gaps into ranked recommendations.
package diagnosis

import (
	"github.com/iwvelando/campaign-planner/internal/planner"
)

// Metric names one scored dimension of ad performance.
type Metric string

// Scored metrics, in scoring order.
const (
	MetricOrders  Metric = "orders"
	MetricBudget  Metric = "budget"
	MetricTraffic Metric = "traffic"
	MetricRoas    Metric = "roas"
)

// Metrics lists every scored metric in a fixed order.
var Metrics = []Metric{MetricOrders, MetricBudget, MetricTraffic, MetricRoas}

// Traffic sources reported in a DiagnosisResult.
const (
	TrafficSourceClicks      = "clicks"
	TrafficSourceImpressions = "impressions"
)

// ActualAdMetrics is the ad platform's snapshot for a date range. A nil field
// was not reported by the platform.
type ActualAdMetrics struct {
	Spend       *float64 `json:"spend,omitempty"`
	Clicks      *int64   `json:"clicks,omitempty"`
	Impressions *int64   `json:"impressions,omitempty"`
	Conversions *int64   `json:"conversions,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
}

// Targets are the planned values actual performance is measured against.
type Targets struct {
	Orders  int64   `json:"orders"`
	Budget  float64 `json:"budget"`
	Traffic int64   `json:"traffic"`
	Roas    float64 `json:"roas"`
}

// TargetsFrom reads the targets out of a planner RequirementSet.
func TargetsFrom(req planner.RequirementSet) Targets {
	return Targets{
		Orders:  req.RequiredOrders,
		Budget:  req.MonthlyAdBudget,
		Traffic: req.MonthlyTraffic,
		Roas:    req.TargetRoas,
	}
}

// Comparison sets targets beside actuals. A nil actual was missing.
type Comparison struct {
	TargetOrders  int64    `json:"targetOrders"`
	ActualOrders  *int64   `json:"actualOrders"`
	TargetBudget  float64  `json:"targetBudget"`
	ActualBudget  *float64 `json:"actualBudget"`
	TargetTraffic int64    `json:"targetTraffic"`
	ActualTraffic *int64   `json:"actualTraffic"`
	TargetRoas    float64  `json:"targetRoas"`
	ActualRoas    *float64 `json:"actualRoas"`
}

// DiagnosisResult is the outcome of one diagnosis. It is never mutated after
// the engine returns it.
type DiagnosisResult struct {
	HealthScore     int                `json:"healthScore"`
	Comparison      Comparison         `json:"comparison"`
	Recommendations []string           `json:"recommendations"`
	FiredRules      []string           `json:"firedRules"`
	SubScores       map[Metric]float64 `json:"subScores"`
	MissingMetrics  []Metric           `json:"missingMetrics"`
	TrafficSource   string             `json:"trafficSource,omitempty"`
	DegradedTraffic bool               `json:"degradedTraffic"`
}
