package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
)

func mustDate(s string) datetime.Date {
	return datetime.NewDate(datetime.MustParseTime(datetime.DateLayout, s))
}

func TestValidateStages(t *testing.T) {
	tests := []struct {
		name    string
		stages  []Stage
		field   string
		wantErr bool
	}{
		{"Default table", DefaultStages(), "", false},
		{"Single stage", []Stage{{Type: "always-on", Weight: 1}}, "", false},
		{"Within tolerance", []Stage{{Type: "a", Weight: 0.1}, {Type: "b", Weight: 0.2}, {Type: "c", Weight: 0.7}}, "", false},
		{"Empty table", nil, "funnel.stages", true},
		{"Does not sum to one", []Stage{{Type: "a", Weight: 0.5}, {Type: "b", Weight: 0.4}}, "funnel.stages", true},
		{"Sums above one", []Stage{{Type: "a", Weight: 0.6}, {Type: "b", Weight: 0.4000001}}, "funnel.stages", true},
		{"Zero weight", []Stage{{Type: "a", Weight: 0}, {Type: "b", Weight: 1}}, "funnel.stages[0].weight", true},
		{"Weight above one", []Stage{{Type: "a", Weight: 1.5}, {Type: "b", Weight: -0.5}}, "funnel.stages[0].weight", true},
		{"Blank type", []Stage{{Type: " ", Weight: 1}}, "funnel.stages[0].type", true},
		{"Duplicate type", []Stage{{Type: "a", Weight: 0.5}, {Type: "a", Weight: 0.5}}, "funnel.stages[1].type", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStages(tt.stages)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, apperr.ConfigurationError) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if apperr.FieldOf(err) != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, apperr.FieldOf(err))
			}
		})
	}
}

func TestAllocateScenario(t *testing.T) {
	allocator, err := NewAllocator(DefaultStages())
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}

	periods, err := allocator.Allocate(15000, 7500000, mustDate("2025-01-01").Time, mustDate("2025-01-30").Time)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	expected := []struct {
		stage   string
		start   string
		end     string
		days    int
		budget  currency.Amount
		traffic int64
	}{
		{constants.StagePreHeat, "2025-01-01", "2025-01-06", 6, 1500000, 3000},
		{constants.StageMainPush, "2025-01-07", "2025-01-21", 15, 3750000, 7500},
		{constants.StageFinalPush, "2025-01-22", "2025-01-30", 9, 2250000, 4500},
	}
	if len(periods) != len(expected) {
		t.Fatalf("expected %d periods, got %d", len(expected), len(periods))
	}
	for i, want := range expected {
		got := periods[i]
		if got.Type != want.stage || got.StartDate.String() != want.start || got.EndDate.String() != want.end {
			t.Errorf("period %d = %s %s..%s, expected %s %s..%s", i, got.Type, got.StartDate, got.EndDate, want.stage, want.start, want.end)
		}
		if got.Days != want.days || got.Budget != want.budget || got.Traffic != want.traffic {
			t.Errorf("period %s = %d days, %d budget, %d traffic; expected %d, %d, %d",
				got.Type, got.Days, got.Budget, got.Traffic, want.days, want.budget, want.traffic)
		}
	}
}

func TestAllocateIndependentDimensions(t *testing.T) {
	allocator, err := NewAllocator([]Stage{
		{Type: "awareness", Weight: 0.15},
		{Type: "consideration", Weight: 0.35},
		{Type: "conversion", Weight: 0.35},
		{Type: "retention", Weight: 0.15},
	})
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}

	periods, err := allocator.Allocate(1003, 99999, mustDate("2025-03-01").Time, mustDate("2025-03-11").Time)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	var days int
	var budget currency.Amount
	var traffic int64
	for _, p := range periods {
		days += p.Days
		budget += p.Budget
		traffic += p.Traffic
	}
	if days != 11 || budget != 99999 || traffic != 1003 {
		t.Fatalf("sums = %d days, %d budget, %d traffic; expected 11, 99999, 1003", days, budget, traffic)
	}
	if periods[0].StartDate.String() != "2025-03-01" || periods[len(periods)-1].EndDate.String() != "2025-03-11" {
		t.Fatalf("periods do not span the range: %s..%s", periods[0].StartDate, periods[len(periods)-1].EndDate)
	}
}

func TestAllocateDropsStagesWithoutDays(t *testing.T) {
	allocator, err := NewAllocator(DefaultStages())
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}

	tests := []struct {
		name    string
		start   string
		end     string
		stages  []string
		days    []int
		weights []float64
		budgets []currency.Amount
	}{
		{
			name:    "Two day campaign",
			start:   "2025-05-01",
			end:     "2025-05-02",
			stages:  []string{constants.StageMainPush, constants.StageFinalPush},
			days:    []int{1, 1},
			weights: []float64{0.625, 0.375},
			budgets: []currency.Amount{625, 375},
		},
		{
			name:    "Single day campaign",
			start:   "2025-05-01",
			end:     "2025-05-01",
			stages:  []string{constants.StageMainPush},
			days:    []int{1},
			weights: []float64{1},
			budgets: []currency.Amount{1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods, err := allocator.Allocate(10, 1000, mustDate(tt.start).Time, mustDate(tt.end).Time)
			if err != nil {
				t.Fatalf("Allocate() error = %v", err)
			}
			if len(periods) != len(tt.stages) {
				t.Fatalf("expected %d periods, got %d", len(tt.stages), len(periods))
			}
			weightSum := 0.0
			for i, p := range periods {
				if p.Type != tt.stages[i] || p.Days != tt.days[i] || p.Budget != tt.budgets[i] {
					t.Errorf("period %d = %s/%d days/%d; expected %s/%d days/%d", i, p.Type, p.Days, p.Budget, tt.stages[i], tt.days[i], tt.budgets[i])
				}
				if math.Abs(p.Weight-tt.weights[i]) > 1e-9 {
					t.Errorf("period %s weight = %v, expected %v", p.Type, p.Weight, tt.weights[i])
				}
				weightSum += p.Weight
			}
			if math.Abs(weightSum-1) > constants.WeightTolerance {
				t.Errorf("weights sum to %v", weightSum)
			}
		})
	}
}

func TestAllocateInvalidRange(t *testing.T) {
	allocator, err := NewAllocator(DefaultStages())
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}

	_, err = allocator.Allocate(10, 1000, mustDate("2025-05-02").Time, mustDate("2025-05-01").Time)
	if !errors.Is(err, apperr.InvalidInput) || apperr.FieldOf(err) != "endDate" {
		t.Fatalf("expected InvalidInput on endDate, got %v", err)
	}

	_, err = allocator.Allocate(-1, 1000, mustDate("2025-05-01").Time, mustDate("2025-05-02").Time)
	if !errors.Is(err, apperr.InvalidInput) {
		t.Fatalf("expected InvalidInput for negative traffic, got %v", err)
	}
}

func TestAllocateExactSumsAcrossRanges(t *testing.T) {
	allocator, err := NewAllocator([]Stage{
		{Type: "teaser", Weight: 0.05},
		{Type: "launch", Weight: 0.45},
		{Type: "sustain", Weight: 0.3},
		{Type: "closeout", Weight: 0.2},
	})
	if err != nil {
		t.Fatalf("NewAllocator() error = %v", err)
	}

	start := mustDate("2024-12-20").Time
	for days := 1; days <= 120; days++ {
		end := datetime.AddDays(start, days-1)
		budget := currency.Amount(int64(days)*12347 + 3)
		traffic := int64(days)*91 + 7

		periods, err := allocator.Allocate(traffic, budget, start, end)
		if err != nil {
			t.Fatalf("Allocate(%d days) error = %v", days, err)
		}

		var sumDays int
		var sumBudget currency.Amount
		var sumTraffic int64
		cursor := start
		for _, p := range periods {
			if p.Days < 1 {
				t.Fatalf("%d days: period %s has %d days", days, p.Type, p.Days)
			}
			if !p.StartDate.Equal(cursor) {
				t.Fatalf("%d days: period %s starts %s, expected %s", days, p.Type, p.StartDate, datetime.Format(cursor))
			}
			cursor = datetime.AddDays(p.EndDate.Time, 1)
			sumDays += p.Days
			sumBudget += p.Budget
			sumTraffic += p.Traffic
		}
		if sumDays != days || sumBudget != budget || sumTraffic != traffic {
			t.Fatalf("%d days: sums %d/%d/%d, expected %d/%d/%d", days, sumDays, sumBudget, sumTraffic, days, budget, traffic)
		}
	}
}
