package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
	"github.com/iwvelando/campaign-planner/pkg/mathutil"
)

// DefaultStages is the funnel table used when configuration supplies none.
func DefaultStages() []Stage {
	return []Stage{
		{Type: constants.StagePreHeat, Weight: 0.2},
		{Type: constants.StageMainPush, Weight: 0.5},
		{Type: constants.StageFinalPush, Weight: 0.3},
	}
}

// ValidateStages checks a funnel table: at least one stage, unique non-empty
// types, every weight in (0,1] and the weights summing to 1.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return apperr.Config("funnel.stages", "at least one funnel stage is required")
	}

	seen := make(map[string]struct{}, len(stages))
	weights := make([]float64, len(stages))
	for i, stage := range stages {
		field := fmt.Sprintf("funnel.stages[%d]", i)
		if strings.TrimSpace(stage.Type) == "" {
			return apperr.Config(field+".type", "stage type cannot be empty")
		}
		if _, dup := seen[stage.Type]; dup {
			return apperr.Config(field+".type", "duplicate stage type %q", stage.Type)
		}
		seen[stage.Type] = struct{}{}
		if !(stage.Weight > 0 && stage.Weight <= 1) {
			return apperr.Config(field+".weight", "weight of stage %q must be in (0,1], got %v", stage.Type, stage.Weight)
		}
		weights[i] = stage.Weight
	}

	if sum := mathutil.Sum(weights); !mathutil.WithinTolerance(sum, 1, constants.WeightTolerance) {
		return apperr.Config("funnel.stages", "stage weights must sum to 1, got %.12f", sum)
	}
	return nil
}

// Allocator splits a campaign's date range, budget and traffic across the
// funnel stages. It holds only the validated table and is safe for concurrent use.
type Allocator struct {
	stages []Stage
}

// NewAllocator validates the funnel table once, at startup.
func NewAllocator(stages []Stage) (*Allocator, error) {
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}
	return &Allocator{stages: append([]Stage(nil), stages...)}, nil
}

// Stages returns a copy of the funnel table.
func (a *Allocator) Stages() []Stage {
	return append([]Stage(nil), a.stages...)
}

// Allocate returns one contiguous FunnelPeriod per stage covering start..end.
//
// Day spans, budget and traffic are each apportioned independently by the
// largest-remainder method against the same weights, so every dimension sums
// exactly to its total. Stages that would get zero days are dropped and the
// remaining weights renormalized before everything is apportioned again.
func (a *Allocator) Allocate(totalTraffic int64, totalBudget currency.Amount, start, end time.Time) ([]FunnelPeriod, error) {
	days := datetime.DaysInclusive(start, end)
	if days < 1 {
		return nil, apperr.Invalid("endDate", "end date %s is before start date %s", datetime.Format(end), datetime.Format(start))
	}
	if totalTraffic < 0 {
		return nil, apperr.Invalid("totalTraffic", "cannot be negative, got %d", totalTraffic)
	}
	if totalBudget < 0 {
		return nil, apperr.Invalid("totalBudget", "cannot be negative, got %s", totalBudget)
	}

	stages := a.stages
	weights := stageWeights(stages)
	spans := mathutil.Apportion(int64(days), weights)
	for hasZero(spans) {
		kept := make([]Stage, 0, len(stages))
		for i, stage := range stages {
			if spans[i] > 0 {
				kept = append(kept, stage)
			}
		}
		stages = kept
		weights = stageWeights(stages)
		spans = mathutil.Apportion(int64(days), weights)
	}

	budgets := mathutil.Apportion(int64(totalBudget), weights)
	traffic := mathutil.Apportion(totalTraffic, weights)

	periods := make([]FunnelPeriod, len(stages))
	cursor := datetime.Truncate(start)
	for i, stage := range stages {
		last := datetime.AddDays(cursor, int(spans[i])-1)
		periods[i] = FunnelPeriod{
			Type:      stage.Type,
			StartDate: datetime.NewDate(cursor),
			EndDate:   datetime.NewDate(last),
			Days:      int(spans[i]),
			Weight:    weights[i],
			Budget:    currency.Amount(budgets[i]),
			Traffic:   traffic[i],
		}
		cursor = datetime.AddDays(last, 1)
	}
	return periods, nil
}

// stageWeights returns the stage weights scaled to sum to 1.
func stageWeights(stages []Stage) []float64 {
	weights := make([]float64, len(stages))
	sum := 0.0
	for _, stage := range stages {
		sum += stage.Weight
	}
	for i, stage := range stages {
		weights[i] = stage.Weight / sum
	}
	return weights
}

func hasZero(values []int64) bool {
	for _, v := range values {
		if v == 0 {
			return true
		}
	}
	return false
}
