package diagnosis

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/campaign-planner/internal/apperr"
)

// Rule comparisons.
const (
	CompareBelow = "below"
	CompareAbove = "above"
)

// Weights are the fixed per-metric weights of the health score.
type Weights struct {
	Orders  float64 `json:"orders"`
	Budget  float64 `json:"budget"`
	Traffic float64 `json:"traffic"`
	Roas    float64 `json:"roas"`
}

// Of returns the weight of metric m.
func (w Weights) Of(m Metric) float64 {
	switch m {
	case MetricOrders:
		return w.Orders
	case MetricBudget:
		return w.Budget
	case MetricTraffic:
		return w.Traffic
	case MetricRoas:
		return w.Roas
	}
	return 0
}

// Rule fires when the actual value of Metric is below (or above) Threshold
// times its target.
type Rule struct {
	ID         string  `json:"id"`
	Metric     Metric  `json:"metric"`
	Comparison string  `json:"comparison"`
	Threshold  float64 `json:"threshold"`
	Message    string  `json:"message"`
}

// Fires evaluates the rule against an actual and a target value.
func (r Rule) Fires(actual, target float64) bool {
	limit := target * r.Threshold
	if r.Comparison == CompareAbove {
		return actual > limit
	}
	return actual < limit
}

// Table is the static scoring and recommendation configuration. Rules are kept
// in priority order.
type Table struct {
	Weights Weights `json:"weights"`
	Rules   []Rule  `json:"rules"`
}

// DefaultTable is used when configuration supplies no diagnosis table.
func DefaultTable() Table {
	return Table{
		Weights: Weights{Orders: 0.35, Budget: 0.15, Traffic: 0.2, Roas: 0.3},
		Rules: []Rule{
			{
				ID: "roas-below-target", Metric: MetricRoas, Comparison: CompareBelow, Threshold: 0.7,
				Message: "ROAS is below 70% of target: reduce CPC bids or tighten audience targeting.",
			},
			{
				ID: "budget-overspend", Metric: MetricBudget, Comparison: CompareAbove, Threshold: 1.3,
				Message: "Spend is more than 30% over plan: review the campaign budget cap.",
			},
			{
				ID: "orders-below-target", Metric: MetricOrders, Comparison: CompareBelow, Threshold: 0.7,
				Message: "Orders are trailing target: review landing page conversion and checkout friction.",
			},
			{
				ID: "traffic-below-target", Metric: MetricTraffic, Comparison: CompareBelow, Threshold: 0.7,
				Message: "Traffic is trailing target: broaden targeting or raise bids on the best ad sets.",
			},
			{
				ID: "budget-underspend", Metric: MetricBudget, Comparison: CompareBelow, Threshold: 0.5,
				Message: "Spend is under half of plan: check delivery limits, bid caps and ad approval status.",
			},
		},
	}
}

// ValidateTable checks weights and rules. Problems are ConfigurationErrors.
func ValidateTable(t Table) error {
	total := 0.0
	for _, m := range Metrics {
		w := t.Weights.Of(m)
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return apperr.Config("diagnosis.weights."+string(m), "weight must be a finite non-negative number, got %v", w)
		}
		total += w
	}
	if total <= 0 {
		return apperr.Config("diagnosis.weights", "at least one metric weight must be positive")
	}

	ids := make(map[string]struct{}, len(t.Rules))
	for i, rule := range t.Rules {
		field := fmt.Sprintf("diagnosis.rules[%d]", i)
		if strings.TrimSpace(rule.ID) == "" {
			return apperr.Config(field+".id", "rule id cannot be empty")
		}
		if _, dup := ids[rule.ID]; dup {
			return apperr.Config(field+".id", "duplicate rule id %q", rule.ID)
		}
		ids[rule.ID] = struct{}{}
		if !knownMetric(rule.Metric) {
			return apperr.Config(field+".metric", "unknown metric %q", rule.Metric)
		}
		if rule.Comparison != CompareBelow && rule.Comparison != CompareAbove {
			return apperr.Config(field+".comparison", "expected %s or %s, got %q", CompareBelow, CompareAbove, rule.Comparison)
		}
		if !(rule.Threshold > 0) || math.IsInf(rule.Threshold, 0) {
			return apperr.Config(field+".threshold", "threshold must be a positive multiple of the target, got %v", rule.Threshold)
		}
		if strings.TrimSpace(rule.Message) == "" {
			return apperr.Config(field+".message", "rule %q has no message", rule.ID)
		}
	}
	return nil
}

func knownMetric(m Metric) bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}
