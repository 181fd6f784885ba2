package planner

import (
	"encoding/json"

	"github.com/iwvelando/campaign-planner/pkg/currency"
)

// PeriodPlan is one allocated period together with its daily breakdown.
type PeriodPlan struct {
	Period FunnelPeriod
	Daily  []DailyBudget
}

// TransformInput is everything the planning pipeline produced. Optional fields
// may be left zero.
type TransformInput struct {
	Periods          []PeriodPlan
	TotalTraffic     int64
	TotalBudget      currency.Amount
	FunnelAllocation FunnelAllocation
	Requirements     *RequirementSet
	Pacing           string
	Extensions       json.RawMessage
}

// Transform assembles the PlanningResult shape consumed by callers. Missing
// collections become empty, a missing funnel allocation stays null.
func Transform(in TransformInput) PlanningResult {
	result := PlanningResult{
		TotalTraffic:     in.TotalTraffic,
		TotalBudget:      in.TotalBudget,
		CampaignPeriods:  make(map[string]FunnelPeriod, len(in.Periods)),
		PeriodOrder:      make([]string, 0, len(in.Periods)),
		DailyBudgets:     make([]DailyBudget, 0),
		FunnelAllocation: in.FunnelAllocation,
		Requirements:     in.Requirements,
		Pacing:           in.Pacing,
		Extensions:       in.Extensions,
	}

	for _, plan := range in.Periods {
		result.CampaignPeriods[plan.Period.Type] = plan.Period
		result.PeriodOrder = append(result.PeriodOrder, plan.Period.Type)
		result.DailyBudgets = append(result.DailyBudgets, plan.Daily...)
	}
	return result
}
