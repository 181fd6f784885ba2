package planner

import (
	"math"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

var maxPlanUnits = decimal.NewFromInt(constants.MaxPlanUnits)

// Validate checks that every target is a finite positive number.
func (in RequirementInput) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"targetRevenue", in.TargetRevenue},
		{"targetAov", in.TargetAov},
		{"targetConversionRate", in.TargetConversionRate},
		{"cpc", in.Cpc},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return apperr.Invalid(f.name, "must be a finite number")
		}
		if f.value <= 0 {
			return apperr.Invalid(f.name, "must be greater than zero, got %v", f.value)
		}
	}
	if in.TargetConversionRate > 1 {
		return apperr.Invalid("targetConversionRate", "must be a fraction no greater than 1, got %v", in.TargetConversionRate)
	}
	return nil
}

// CalculateRequirements derives orders, traffic, budget and ROAS from the
// targets for a campaign lasting days calendar days. Quotients are computed in
// decimal so the ceilings apply to exact values. The budget is rounded to
// minor units before ROAS is taken, so it matches the planned total.
func CalculateRequirements(in RequirementInput, days int) (RequirementSet, error) {
	if err := in.Validate(); err != nil {
		return RequirementSet{}, err
	}
	if days < 1 {
		return RequirementSet{}, apperr.Invalid("days", "campaign must last at least one day, got %d", days)
	}

	revenue := decimal.NewFromFloat(in.TargetRevenue)
	aov := decimal.NewFromFloat(in.TargetAov)
	cvr := decimal.NewFromFloat(in.TargetConversionRate)
	cpc := decimal.NewFromFloat(in.Cpc)
	d := decimal.NewFromInt(int64(days))

	orders := revenue.Div(aov).Ceil()
	if orders.GreaterThan(maxPlanUnits) {
		return RequirementSet{}, apperr.Invalid("targetRevenue", "requires %s orders, more than the supported %d", orders, constants.MaxPlanUnits)
	}
	traffic := orders.Div(cvr).Ceil()
	if traffic.GreaterThan(maxPlanUnits) {
		return RequirementSet{}, apperr.Invalid("targetConversionRate", "requires %s visits, more than the supported %d", traffic, constants.MaxPlanUnits)
	}
	minorUnits := traffic.Mul(cpc).Shift(constants.MinorUnitDigits).Round(0)
	if minorUnits.GreaterThan(maxPlanUnits) {
		return RequirementSet{}, apperr.Invalid("cpc", "requires a budget of %s minor units, more than the supported %d", minorUnits, constants.MaxPlanUnits)
	}
	if minorUnits.IsZero() {
		return RequirementSet{}, apperr.New(apperr.DivisionByZero, "monthlyAdBudget", "required ad budget rounds to zero, ROAS is undefined")
	}
	budget := minorUnits.Shift(-constants.MinorUnitDigits)

	return RequirementSet{
		Days:            days,
		RequiredOrders:  orders.IntPart(),
		MonthlyTraffic:  traffic.IntPart(),
		DailyTraffic:    traffic.Div(d).InexactFloat64(),
		MonthlyAdBudget: budget.InexactFloat64(),
		DailyAdBudget:   budget.Div(d).InexactFloat64(),
		TargetRoas:      revenue.Div(budget).InexactFloat64(),
	}, nil
}
