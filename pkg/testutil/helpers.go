// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/campaign-planner/internal/planner"
)

// FindPeriod finds a funnel period by stage type in a planning result.
// Returns a pointer to a copy of the period if found, nil otherwise.
func FindPeriod(result planner.PlanningResult, stage string) *planner.FunnelPeriod {
	period, ok := result.CampaignPeriods[stage]
	if !ok {
		return nil
	}
	return &period
}

// FindDay finds the daily row for a YYYY-MM-DD date in a planning result.
// Returns a pointer to the row if found, nil otherwise.
func FindDay(result planner.PlanningResult, date string) *planner.DailyBudget {
	for i := range result.DailyBudgets {
		if result.DailyBudgets[i].Date.String() == date {
			return &result.DailyBudgets[i]
		}
	}
	return nil
}

// Ptr returns a pointer to v, for building optional metric fields.
func Ptr[T any](v T) *T {
	return &v
}
