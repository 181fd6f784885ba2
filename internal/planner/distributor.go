package planner

import (
	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
)

// Distributor spreads a period's budget and traffic over its calendar days.
type Distributor struct {
	pacing Pacing
}

// NewDistributor uses pacing for both budget and traffic. A nil pacing is uniform.
func NewDistributor(pacing Pacing) *Distributor {
	if pacing == nil {
		pacing = UniformPacing{}
	}
	return &Distributor{pacing: pacing}
}

// Pacing returns the active pacing policy.
func (d *Distributor) Pacing() Pacing {
	return d.pacing
}

// Distribute returns one DailyBudget per day of period, ascending by date.
// Budget and traffic are split independently and each sums to the period total.
func (d *Distributor) Distribute(period FunnelPeriod) ([]DailyBudget, error) {
	days := datetime.DaysInclusive(period.StartDate.Time, period.EndDate.Time)
	if days < 1 {
		return nil, apperr.Invalid("endDate", "period %q ends before it starts", period.Type)
	}
	if period.Days != days {
		return nil, apperr.Invalid("days", "period %q spans %d days but declares %d", period.Type, days, period.Days)
	}

	budgets := d.pacing.Split(int64(period.Budget), days)
	traffic := d.pacing.Split(period.Traffic, days)

	daily := make([]DailyBudget, days)
	for i := range daily {
		daily[i] = DailyBudget{
			Date:    datetime.NewDate(datetime.AddDays(period.StartDate.Time, i)),
			Period:  period.Type,
			Budget:  currency.Amount(budgets[i]),
			Traffic: traffic[i],
		}
	}
	return daily, nil
}
