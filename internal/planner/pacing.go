package planner

import (
	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/mathutil"
)

// Pacing decides how a period's total is spread across its days. Any
// implementation must return exactly days non-negative shares summing to total.
type Pacing interface {
	Name() string
	Split(total int64, days int) []int64
}

// UniformPacing books floor(total/days) on every day and the remainder on the last day.
type UniformPacing struct{}

// Name implements Pacing.
func (UniformPacing) Name() string { return constants.PacingUniform }

// Split implements Pacing.
func (UniformPacing) Split(total int64, days int) []int64 {
	shares := make([]int64, days)
	if days < 1 {
		return shares
	}
	base := total / int64(days)
	for i := range shares {
		shares[i] = base
	}
	shares[days-1] += total - base*int64(days)
	return shares
}

// LinearPacing weights days on a straight line, heaviest on the first day when
// FrontLoaded is set and on the last day otherwise.
type LinearPacing struct {
	FrontLoaded bool
}

// Name implements Pacing.
func (p LinearPacing) Name() string {
	if p.FrontLoaded {
		return constants.PacingFrontLoaded
	}
	return constants.PacingBackLoaded
}

// Split implements Pacing.
func (p LinearPacing) Split(total int64, days int) []int64 {
	if days < 1 {
		return []int64{}
	}
	weights := make([]float64, days)
	for i := range weights {
		if p.FrontLoaded {
			weights[i] = float64(days - i)
		} else {
			weights[i] = float64(i + 1)
		}
	}
	return mathutil.Apportion(total, weights)
}

// PacingByName resolves a configured pacing policy. Empty selects uniform.
func PacingByName(name string) (Pacing, error) {
	switch name {
	case "", constants.PacingUniform:
		return UniformPacing{}, nil
	case constants.PacingFrontLoaded:
		return LinearPacing{FrontLoaded: true}, nil
	case constants.PacingBackLoaded:
		return LinearPacing{}, nil
	default:
		return nil, apperr.Config("funnel.pacing", "unknown pacing %q, expected %s, %s or %s",
			name, constants.PacingUniform, constants.PacingFrontLoaded, constants.PacingBackLoaded)
	}
}
