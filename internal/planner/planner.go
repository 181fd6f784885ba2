package planner

import (
	"fmt"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
	"go.uber.org/zap"
)

// Planner runs the whole planning pipeline: requirements, period allocation,
// daily distribution and result assembly. It keeps no per-request state and is
// safe for concurrent use.
type Planner struct {
	logger      *zap.Logger
	allocator   *Allocator
	distributor *Distributor
}

// New builds a Planner from a funnel table and a pacing policy. An invalid
// table is a ConfigurationError.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(logger *zap.Logger, stages []Stage, pacing Pacing) (*Planner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	allocator, err := NewAllocator(stages)
	if err != nil {
		return nil, err
	}
	return &Planner{
		logger:      logger,
		allocator:   allocator,
		distributor: NewDistributor(pacing),
	}, nil
}

// Plan computes the PlanningResult for one request. On failure no partial
// result is returned.
func (p *Planner) Plan(input CampaignPlanInput) (PlanningResult, error) {
	start, err := datetime.ParseDate(input.StartDate)
	if err != nil {
		return PlanningResult{}, apperr.Invalid("startDate", "%v", err)
	}
	end, err := datetime.ParseDate(input.EndDate)
	if err != nil {
		return PlanningResult{}, apperr.Invalid("endDate", "%v", err)
	}
	days := datetime.DaysInclusive(start, end)
	if days < 1 {
		return PlanningResult{}, apperr.Invalid("endDate", "end date %s is before start date %s", input.EndDate, input.StartDate)
	}

	req, err := CalculateRequirements(input.Requirements(), days)
	if err != nil {
		return PlanningResult{}, err
	}
	totalBudget := req.Budget()

	periods, err := p.allocator.Allocate(req.MonthlyTraffic, totalBudget, start, end)
	if err != nil {
		return PlanningResult{}, err
	}

	plans := make([]PeriodPlan, len(periods))
	allocation := make(FunnelAllocation, len(periods))
	for i, period := range periods {
		daily, err := p.distributor.Distribute(period)
		if err != nil {
			return PlanningResult{}, err
		}
		plans[i] = PeriodPlan{Period: period, Daily: daily}
		allocation[period.Type] = period.Weight
	}
	if len(periods) < len(p.allocator.stages) {
		p.logger.Debug("dropped funnel stages for short campaign",
			zap.String("op", "planner.Plan"),
			zap.Int("days", days),
			zap.Int("stages", len(p.allocator.stages)),
			zap.Int("kept", len(periods)),
		)
	}

	result := Transform(TransformInput{
		Periods:          plans,
		TotalTraffic:     req.MonthlyTraffic,
		TotalBudget:      totalBudget,
		FunnelAllocation: allocation,
		Requirements:     &req,
		Pacing:           p.distributor.Pacing().Name(),
		Extensions:       input.Extensions,
	})
	if err := result.Reconcile(days); err != nil {
		return PlanningResult{}, fmt.Errorf("plan failed reconciliation: %w", err)
	}

	p.logger.Debug("plan computed",
		zap.String("op", "planner.Plan"),
		zap.String("start", input.StartDate),
		zap.String("end", input.EndDate),
		zap.Int("days", days),
		zap.Int64("traffic", result.TotalTraffic),
		zap.String("budget", result.TotalBudget.String()),
		zap.Int("periods", len(result.CampaignPeriods)),
	)
	return result, nil
}

// Reconcile verifies that periods and daily rows add up exactly to the totals
// and that the periods cover days calendar days without gaps.
func (r PlanningResult) Reconcile(days int) error {
	var periodBudget currency.Amount
	var periodTraffic int64
	periodDays := 0
	periods := r.Periods()
	for i, period := range periods {
		periodBudget += period.Budget
		periodTraffic += period.Traffic
		periodDays += period.Days
		if i > 0 && !datetime.AddDays(periods[i-1].EndDate.Time, 1).Equal(period.StartDate.Time) {
			return fmt.Errorf("period %q does not start the day after %q ends", period.Type, periods[i-1].Type)
		}
	}
	if periodBudget != r.TotalBudget {
		return fmt.Errorf("period budgets sum to %s, expected %s", periodBudget, r.TotalBudget)
	}
	if periodTraffic != r.TotalTraffic {
		return fmt.Errorf("period traffic sums to %d, expected %d", periodTraffic, r.TotalTraffic)
	}
	if periodDays != days {
		return fmt.Errorf("periods span %d days, expected %d", periodDays, days)
	}

	var dailyBudget currency.Amount
	var dailyTraffic int64
	for _, day := range r.DailyBudgets {
		dailyBudget += day.Budget
		dailyTraffic += day.Traffic
	}
	if dailyBudget != r.TotalBudget {
		return fmt.Errorf("daily budgets sum to %s, expected %s", dailyBudget, r.TotalBudget)
	}
	if dailyTraffic != r.TotalTraffic {
		return fmt.Errorf("daily traffic sums to %d, expected %d", dailyTraffic, r.TotalTraffic)
	}
	if len(r.DailyBudgets) != days {
		return fmt.Errorf("%d daily rows, expected %d", len(r.DailyBudgets), days)
	}
	return nil
}
