// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/campaign-planner/internal/adsource"
	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/internal/planner"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment variables that override config keys, e.g.
// CAMPAIGN_PLANNER_OUTPUT_FORMAT.
const EnvPrefix = "CAMPAIGN_PLANNER"

// Configuration holds all configuration for campaign-planner.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Funnel    FunnelConfig    `yaml:"funnel,omitempty"`
	Diagnosis DiagnosisConfig `yaml:"diagnosis,omitempty"`
	Plan      *PlanConfig     `yaml:"plan,omitempty"`
	Diagnose  *DiagnoseConfig `yaml:"diagnose,omitempty"`
	Accounts  []AccountConfig `yaml:"accounts,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// FunnelConfig selects the funnel stage table and the daily pacing policy.
// Empty stages select the default pre-heat/main-push/final-push table.
type FunnelConfig struct {
	Pacing string        `yaml:"pacing,omitempty"`
	Stages []StageConfig `yaml:"stages,omitempty"`
}

// StageConfig is one funnel stage.
type StageConfig struct {
	Type   string  `yaml:"type"`
	Weight float64 `yaml:"weight"`
}

// DiagnosisConfig overrides the scoring weights and the rule table. Nil
// weights or empty rules keep the defaults.
type DiagnosisConfig struct {
	Weights *WeightsConfig `yaml:"weights,omitempty"`
	Rules   []RuleConfig   `yaml:"rules,omitempty"`
}

// WeightsConfig holds one weight per diagnosis metric.
type WeightsConfig struct {
	Orders  float64 `yaml:"orders"`
	Budget  float64 `yaml:"budget"`
	Traffic float64 `yaml:"traffic"`
	Roas    float64 `yaml:"roas"`
}

// RuleConfig is one diagnosis rule.
type RuleConfig struct {
	ID         string  `yaml:"id"`
	Metric     string  `yaml:"metric"`
	Comparison string  `yaml:"comparison"`
	Threshold  float64 `yaml:"threshold"`
	Message    string  `yaml:"message"`
}

// TargetsConfig holds the goal parameters shared by plan and diagnose runs.
type TargetsConfig struct {
	StartDate            string  `yaml:"startDate"`
	EndDate              string  `yaml:"endDate"`
	TargetRevenue        float64 `yaml:"targetRevenue"`
	TargetAov            float64 `yaml:"targetAov"`
	TargetConversionRate float64 `yaml:"targetConversionRate"`
	Cpc                  float64 `yaml:"cpc"`
}

// PlanConfig is the campaign planned in plan mode.
type PlanConfig struct {
	TargetsConfig `mapstructure:",squash" yaml:",inline"`
	Extensions    map[string]interface{} `yaml:"extensions,omitempty"`
}

// DiagnoseConfig is the campaign diagnosed in diagnose mode. Either
// AccountID or Actual should be set.
type DiagnoseConfig struct {
	TargetsConfig `mapstructure:",squash" yaml:",inline"`
	AccountID     string         `yaml:"accountId,omitempty"`
	Actual        *MetricsConfig `yaml:"actual,omitempty"`
}

// MetricsConfig is a set of ad metrics. Omitted fields were not reported.
type MetricsConfig struct {
	Spend       *float64 `yaml:"spend,omitempty"`
	Clicks      *int64   `yaml:"clicks,omitempty"`
	Impressions *int64   `yaml:"impressions,omitempty"`
	Conversions *int64   `yaml:"conversions,omitempty"`
	Revenue     *float64 `yaml:"revenue,omitempty"`
}

// AccountConfig seeds one ad account with daily metrics.
type AccountConfig struct {
	ID    string        `yaml:"id"`
	Daily []DailyConfig `yaml:"daily"`
}

// DailyConfig is one day of metrics for an account.
type DailyConfig struct {
	Date          string `yaml:"date"`
	MetricsConfig `mapstructure:",squash" yaml:",inline"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Stages returns the configured funnel table, or the default one.
func (conf *Configuration) Stages() []planner.Stage {
	if len(conf.Funnel.Stages) == 0 {
		return planner.DefaultStages()
	}
	stages := make([]planner.Stage, len(conf.Funnel.Stages))
	for i, s := range conf.Funnel.Stages {
		stages[i] = planner.Stage{Type: s.Type, Weight: s.Weight}
	}
	return stages
}

// DiagnosisTable returns the configured weights and rules, falling back to
// the defaults for whichever part is absent.
func (conf *Configuration) DiagnosisTable() diagnosis.Table {
	table := diagnosis.DefaultTable()
	if w := conf.Diagnosis.Weights; w != nil {
		table.Weights = diagnosis.Weights{Orders: w.Orders, Budget: w.Budget, Traffic: w.Traffic, Roas: w.Roas}
	}
	if len(conf.Diagnosis.Rules) > 0 {
		table.Rules = make([]diagnosis.Rule, len(conf.Diagnosis.Rules))
		for i, r := range conf.Diagnosis.Rules {
			table.Rules[i] = diagnosis.Rule{
				ID:         r.ID,
				Metric:     diagnosis.Metric(strings.ToLower(strings.TrimSpace(r.Metric))),
				Comparison: strings.ToLower(strings.TrimSpace(r.Comparison)),
				Threshold:  r.Threshold,
				Message:    r.Message,
			}
		}
	}
	return table
}

// NewPlanner builds a planner from the funnel section.
func (conf *Configuration) NewPlanner(logger *zap.Logger) (*planner.Planner, error) {
	pacing, err := planner.PacingByName(strings.ToLower(strings.TrimSpace(conf.Funnel.Pacing)))
	if err != nil {
		return nil, err
	}
	return planner.New(logger, conf.Stages(), pacing)
}

// NewEngine builds a diagnosis engine from the diagnosis section.
func (conf *Configuration) NewEngine(logger *zap.Logger) (*diagnosis.Engine, error) {
	return diagnosis.NewEngine(logger, conf.DiagnosisTable())
}

// PlanInput converts the plan section into a planner request.
func (conf *Configuration) PlanInput() (planner.CampaignPlanInput, error) {
	if conf.Plan == nil {
		return planner.CampaignPlanInput{}, fmt.Errorf("configuration has no plan section")
	}
	p := conf.Plan
	input := planner.CampaignPlanInput{
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		TargetRevenue:        p.TargetRevenue,
		TargetAov:            p.TargetAov,
		TargetConversionRate: p.TargetConversionRate,
		Cpc:                  p.Cpc,
	}
	if len(p.Extensions) > 0 {
		raw, err := json.Marshal(p.Extensions)
		if err != nil {
			return planner.CampaignPlanInput{}, fmt.Errorf("unable to encode plan extensions, %s", err)
		}
		input.Extensions = raw
	}
	return input, nil
}

// DiagnosisRequest converts the diagnose section into a diagnosis request.
func (conf *Configuration) DiagnosisRequest() (diagnosis.Request, error) {
	if conf.Diagnose == nil {
		return diagnosis.Request{}, fmt.Errorf("configuration has no diagnose section")
	}
	d := conf.Diagnose
	req := diagnosis.Request{
		TargetRevenue:        d.TargetRevenue,
		TargetAov:            d.TargetAov,
		TargetConversionRate: d.TargetConversionRate,
		Cpc:                  d.Cpc,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		AccountID:            d.AccountID,
	}
	if d.Actual != nil {
		actual := d.Actual.metrics()
		req.Actual = &actual
	}
	return req, nil
}

func (m MetricsConfig) metrics() diagnosis.ActualAdMetrics {
	return diagnosis.ActualAdMetrics{
		Spend:       m.Spend,
		Clicks:      m.Clicks,
		Impressions: m.Impressions,
		Conversions: m.Conversions,
		Revenue:     m.Revenue,
	}
}

// SeedSource loads every configured account row into source.
func (conf *Configuration) SeedSource(source *adsource.MemorySource) error {
	for i, account := range conf.Accounts {
		if strings.TrimSpace(account.ID) == "" {
			return fmt.Errorf("accounts[%d] has no id", i)
		}
		for j, row := range account.Daily {
			date, err := datetime.ParseDate(row.Date)
			if err != nil {
				return fmt.Errorf("accounts[%d].daily[%d]: %v", i, j, err)
			}
			source.Upsert(account.ID, adsource.DailyMetrics{
				Date:        date,
				Spend:       row.Spend,
				Clicks:      row.Clicks,
				Impressions: row.Impressions,
				Conversions: row.Conversions,
				Revenue:     row.Revenue,
			})
		}
	}
	return nil
}
