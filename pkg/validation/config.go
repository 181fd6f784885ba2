// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/campaign-planner/pkg/constants"
)

// ConfigValidator collects the parts of a configuration that are checked for
// warnings. Hard errors are raised when the tables are loaded; these are the
// settings that are legal but probably not what the author meant.
type ConfigValidator struct {
	Stages   []StageInfo
	Plan     PlanInfo
	Weights  map[string]float64
	Rules    []RuleInfo
	Accounts []AccountInfo
}

// StageInfo describes one funnel stage.
type StageInfo struct {
	Type   string
	Weight float64
}

// PlanInfo describes the configured plan request, if any.
type PlanInfo struct {
	StartDate string
	EndDate   string
}

// RuleInfo describes one diagnosis rule.
type RuleInfo struct {
	ID     string
	Metric string
}

// AccountInfo describes one seeded ad account.
type AccountInfo struct {
	ID        string
	DailyRows int
}

// ValidateStageCoverage warns about stages whose share of a days-long plan is
// under one day, which the allocator may drop.
func ValidateStageCoverage(stages []StageInfo, days int) []string {
	var warnings []string
	if days < 1 {
		return warnings
	}
	for _, stage := range stages {
		if stage.Weight*float64(days) < 1 {
			warnings = append(warnings, fmt.Sprintf("Funnel stage '%s' (weight %.2f) may be dropped from the %d-day plan",
				stage.Type, stage.Weight, days))
		}
	}
	return warnings
}

// ValidateRuleWeights warns about rules on metrics that carry no score weight.
func ValidateRuleWeights(rules []RuleInfo, weights map[string]float64) []string {
	var warnings []string
	for _, rule := range rules {
		if w, ok := weights[rule.Metric]; ok && w == 0 {
			warnings = append(warnings, fmt.Sprintf("Diagnosis rule '%s' targets metric '%s' which carries no score weight",
				rule.ID, rule.Metric))
		}
	}
	return warnings
}

// ValidateAccounts warns about duplicated or empty seeded accounts.
func ValidateAccounts(accounts []AccountInfo) []string {
	var warnings []string
	seen := make(map[string]struct{}, len(accounts))
	for _, account := range accounts {
		if _, dup := seen[account.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("Account '%s' is defined more than once - daily rows are merged", account.ID))
		}
		seen[account.ID] = struct{}{}
		if account.DailyRows == 0 {
			warnings = append(warnings, fmt.Sprintf("Account '%s' has no daily metrics", account.ID))
		}
	}
	return warnings
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.Plan.StartDate != "" && cv.Plan.EndDate != "" {
		start, startErr := time.Parse(constants.DateLayout, cv.Plan.StartDate)
		end, endErr := time.Parse(constants.DateLayout, cv.Plan.EndDate)
		if startErr == nil && endErr == nil {
			days := int(end.Sub(start).Hours()/24) + 1
			warnings = append(warnings, ValidateStageCoverage(cv.Stages, days)...)
		}
	}

	warnings = append(warnings, ValidateRuleWeights(cv.Rules, cv.Weights)...)
	warnings = append(warnings, ValidateAccounts(cv.Accounts)...)

	return warnings
}
