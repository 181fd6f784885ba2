// Package planner turns a merchant's sales targets into an advertising budget
// plan: required traffic and budget, funnel periods, and a day-by-day spending
// schedule whose totals reconcile exactly in currency minor units.
package planner

import (
	"encoding/json"

	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
)

// CampaignPlanInput is one planning request.
type CampaignPlanInput struct {
	StartDate            string  `json:"startDate"`
	EndDate              string  `json:"endDate"`
	TargetRevenue        float64 `json:"targetRevenue"`
	TargetAov            float64 `json:"targetAov"`
	TargetConversionRate float64 `json:"targetConversionRate"`
	Cpc                  float64 `json:"cpc"`

	// Extensions is carried through to the result untouched.
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

// Requirements returns the date-free part of the request.
func (in CampaignPlanInput) Requirements() RequirementInput {
	return RequirementInput{
		TargetRevenue:        in.TargetRevenue,
		TargetAov:            in.TargetAov,
		TargetConversionRate: in.TargetConversionRate,
		Cpc:                  in.Cpc,
	}
}

// RequirementInput holds the business targets a RequirementSet is derived from.
type RequirementInput struct {
	TargetRevenue        float64 `json:"targetRevenue"`
	TargetAov            float64 `json:"targetAov"`
	TargetConversionRate float64 `json:"targetConversionRate"`
	Cpc                  float64 `json:"cpc"`
}

// RequirementSet is what the targets demand over the campaign.
type RequirementSet struct {
	Days            int     `json:"days"`
	RequiredOrders  int64   `json:"requiredOrders"`
	MonthlyTraffic  int64   `json:"monthlyTraffic"`
	DailyTraffic    float64 `json:"dailyTraffic"`
	MonthlyAdBudget float64 `json:"monthlyAdBudget"`
	DailyAdBudget   float64 `json:"dailyAdBudget"`
	TargetRoas      float64 `json:"targetRoas"`
}

// Budget returns MonthlyAdBudget in minor units.
func (r RequirementSet) Budget() currency.Amount {
	return currency.FromFloat(r.MonthlyAdBudget)
}

// Stage is one row of the funnel weight table.
type Stage struct {
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// FunnelPeriod is a contiguous slice of the campaign assigned to one stage.
type FunnelPeriod struct {
	Type      string          `json:"type"`
	StartDate datetime.Date   `json:"startDate"`
	EndDate   datetime.Date   `json:"endDate"`
	Days      int             `json:"days"`
	Weight    float64         `json:"weight"`
	Budget    currency.Amount `json:"budget"`
	Traffic   int64           `json:"traffic"`
}

// DailyBudget is the spend and traffic planned for one calendar day.
type DailyBudget struct {
	Date    datetime.Date   `json:"date"`
	Period  string          `json:"period"`
	Budget  currency.Amount `json:"budget"`
	Traffic int64           `json:"traffic"`
}

// FunnelAllocation maps a stage type to the share of the plan it received.
type FunnelAllocation map[string]float64

// PlanningResult is the complete plan handed back to callers.
type PlanningResult struct {
	TotalTraffic     int64                   `json:"totalTraffic"`
	TotalBudget      currency.Amount         `json:"totalBudget"`
	CampaignPeriods  map[string]FunnelPeriod `json:"campaignPeriods"`
	PeriodOrder      []string                `json:"periodOrder"`
	DailyBudgets     []DailyBudget           `json:"dailyBudgets"`
	FunnelAllocation FunnelAllocation        `json:"funnelAllocation"`
	Requirements     *RequirementSet         `json:"requirements,omitempty"`
	Pacing           string                  `json:"pacing,omitempty"`
	Extensions       json.RawMessage         `json:"extensions,omitempty"`
}

// Periods returns the campaign periods in timeline order.
func (r PlanningResult) Periods() []FunnelPeriod {
	periods := make([]FunnelPeriod, 0, len(r.PeriodOrder))
	for _, key := range r.PeriodOrder {
		if period, ok := r.CampaignPeriods[key]; ok {
			periods = append(periods, period)
		}
	}
	return periods
}
