package config

import (
	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/pkg/validation"
)

// ValidateConfiguration performs validation checks on the configuration and
// returns warnings. Settings that would make a run fail are reported when the
// planner or engine is built instead.
func (conf *Configuration) ValidateConfiguration() []string {
	cv := validation.ConfigValidator{}

	for _, stage := range conf.Stages() {
		cv.Stages = append(cv.Stages, validation.StageInfo{Type: stage.Type, Weight: stage.Weight})
	}
	if conf.Plan != nil {
		cv.Plan = validation.PlanInfo{StartDate: conf.Plan.StartDate, EndDate: conf.Plan.EndDate}
	}

	table := conf.DiagnosisTable()
	cv.Weights = make(map[string]float64, len(diagnosis.Metrics))
	for _, m := range diagnosis.Metrics {
		cv.Weights[string(m)] = table.Weights.Of(m)
	}
	for _, rule := range table.Rules {
		cv.Rules = append(cv.Rules, validation.RuleInfo{ID: rule.ID, Metric: string(rule.Metric)})
	}

	for _, account := range conf.Accounts {
		cv.Accounts = append(cv.Accounts, validation.AccountInfo{ID: account.ID, DailyRows: len(account.Daily)})
	}

	return cv.ValidateAll()
}
