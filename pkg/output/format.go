// Package output provides utilities for formatting and displaying planning and
// diagnosis results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/internal/planner"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Plan writes a planning result in the requested output format.
func Plan(w io.Writer, outputFormat string, result planner.PlanningResult) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyPlan(w, result)
	case constants.OutputFormatCSV:
		return CsvPlan(w, result)
	case constants.OutputFormatJSON:
		return JSON(w, result)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// Diagnosis writes a diagnosis result in the requested output format.
func Diagnosis(w io.Writer, outputFormat string, result diagnosis.DiagnosisResult) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyDiagnosis(w, result)
	case constants.OutputFormatCSV:
		return CsvDiagnosis(w, result)
	case constants.OutputFormatJSON:
		return JSON(w, result)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrettyPlan outputs a human-readable rather than machine-readable plan.
func PrettyPlan(w io.Writer, result planner.PlanningResult) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	_, _ = p.Fprintf(&b, "--- Campaign plan ---\n")
	_, _ = p.Fprintf(&b, "Total budget:  %s\n", format.Currency(result.TotalBudget))
	_, _ = p.Fprintf(&b, "Total traffic: %d\n", result.TotalTraffic)
	if req := result.Requirements; req != nil {
		_, _ = p.Fprintf(&b, "Orders: %d | Daily traffic: %.2f | Daily budget: $%.2f | Target ROAS: %s\n",
			req.RequiredOrders, req.DailyTraffic, req.DailyAdBudget, format.Ratio(req.TargetRoas))
	}
	if result.Pacing != "" {
		_, _ = p.Fprintf(&b, "Pacing: %s\n", result.Pacing)
	}

	_, _ = p.Fprintf(&b, "\nStage        | Dates                   | Days | Share | Budget        | Traffic\n")
	_, _ = p.Fprintf(&b, "_____        | _____                   | ____ | _____ | ______        | _______\n")
	for _, period := range result.Periods() {
		_, _ = p.Fprintf(&b, "%-12s | %s - %s | %4d | %4.0f%% | %13s | %d\n",
			period.Type, period.StartDate, period.EndDate, period.Days,
			result.FunnelAllocation[period.Type]*100, format.Currency(period.Budget), period.Traffic)
	}

	_, _ = p.Fprintf(&b, "\nDate       | Stage        | Budget        | Traffic\n")
	_, _ = p.Fprintf(&b, "____       | _____        | ______        | _______\n")
	for _, day := range result.DailyBudgets {
		_, _ = p.Fprintf(&b, "%s | %-12s | %13s | %d\n", day.Date, day.Period, format.Currency(day.Budget), day.Traffic)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvPlan outputs the daily plan in comma-separated value format.
func CsvPlan(w io.Writer, result planner.PlanningResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "period", "budget", "traffic"})
	for _, day := range result.DailyBudgets {
		_ = cw.Write([]string{
			day.Date.String(),
			day.Period,
			day.Budget.String(),
			strconv.FormatInt(day.Traffic, 10),
		})
	}
	cw.Flush()
	return cw.Error()
}

// PrettyDiagnosis outputs a human-readable diagnosis.
func PrettyDiagnosis(w io.Writer, result diagnosis.DiagnosisResult) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	c := result.Comparison

	_, _ = p.Fprintf(&b, "--- Ad health diagnosis ---\n")
	_, _ = p.Fprintf(&b, "Health score: %d/%d\n", result.HealthScore, constants.MaxHealthScore)
	if result.DegradedTraffic {
		_, _ = p.Fprintf(&b, "Traffic measured by %s (clicks not reported)\n", result.TrafficSource)
	}

	_, _ = p.Fprintf(&b, "\nMetric  | Target        | Actual        | Score\n")
	_, _ = p.Fprintf(&b, "______  | ______        | ______        | _____\n")
	rows := []struct {
		metric diagnosis.Metric
		target string
		actual string
	}{
		{diagnosis.MetricOrders, p.Sprintf("%d", c.TargetOrders), intOrDash(p, c.ActualOrders)},
		{diagnosis.MetricBudget, p.Sprintf("$%.2f", c.TargetBudget), moneyOrDash(p, c.ActualBudget)},
		{diagnosis.MetricTraffic, p.Sprintf("%d", c.TargetTraffic), intOrDash(p, c.ActualTraffic)},
		{diagnosis.MetricRoas, format.Ratio(c.TargetRoas), ratioOrDash(c.ActualRoas)},
	}
	for _, row := range rows {
		score := "-"
		if s, ok := result.SubScores[row.metric]; ok {
			score = fmt.Sprintf("%.2f", s)
		}
		_, _ = p.Fprintf(&b, "%-7s | %13s | %13s | %s\n", row.metric, row.target, row.actual, score)
	}

	if len(result.Recommendations) > 0 {
		_, _ = p.Fprintf(&b, "\nRecommendations:\n")
		for i, rec := range result.Recommendations {
			_, _ = p.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvDiagnosis outputs the per-metric comparison in comma-separated value format.
func CsvDiagnosis(w io.Writer, result diagnosis.DiagnosisResult) error {
	c := result.Comparison
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"metric", "target", "actual", "subScore"})
	rows := [][]string{
		{string(diagnosis.MetricOrders), strconv.FormatInt(c.TargetOrders, 10), intField(c.ActualOrders)},
		{string(diagnosis.MetricBudget), floatField(&c.TargetBudget, 2), floatField(c.ActualBudget, 2)},
		{string(diagnosis.MetricTraffic), strconv.FormatInt(c.TargetTraffic, 10), intField(c.ActualTraffic)},
		{string(diagnosis.MetricRoas), floatField(&c.TargetRoas, 4), floatField(c.ActualRoas, 4)},
	}
	for _, row := range rows {
		score := ""
		if s, ok := result.SubScores[diagnosis.Metric(row[0])]; ok {
			score = strconv.FormatFloat(s, 'f', 4, 64)
		}
		_ = cw.Write(append(row, score))
	}
	_ = cw.Write([]string{"healthScore", "", strconv.Itoa(result.HealthScore), ""})
	cw.Flush()
	return cw.Error()
}

func intOrDash(p *message.Printer, v *int64) string {
	if v == nil {
		return "-"
	}
	return p.Sprintf("%d", *v)
}

func moneyOrDash(p *message.Printer, v *float64) string {
	if v == nil {
		return "-"
	}
	return p.Sprintf("$%.2f", *v)
}

func ratioOrDash(v *float64) string {
	if v == nil {
		return "-"
	}
	return format.Ratio(*v)
}

func intField(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func floatField(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
