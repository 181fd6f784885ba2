// Package adsource resolves ad accounts to the metrics the diagnosis engine
// consumes. Fetching from live ad platforms happens elsewhere; this package
// holds rows that were already collected.
package adsource

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/pkg/currency"
	"github.com/iwvelando/campaign-planner/pkg/datetime"
)

// ErrAccountNotFound is returned when no rows were ever stored for an account.
var ErrAccountNotFound = errors.New("ad account not found")

// DailyMetrics is one day of platform-reported metrics. Nil fields were not reported.
type DailyMetrics struct {
	Date        time.Time
	Spend       *float64
	Clicks      *int64
	Impressions *int64
	Conversions *int64
	Revenue     *float64
}

// MemorySource keeps daily rows per account in memory.
type MemorySource struct {
	mu       sync.RWMutex
	accounts map[string]map[time.Time]DailyMetrics
}

// NewMemorySource returns an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{accounts: make(map[string]map[time.Time]DailyMetrics)}
}

// Upsert stores row for accountID, replacing any row already held for that day.
func (s *MemorySource) Upsert(accountID string, row DailyMetrics) {
	accountID = strings.TrimSpace(accountID)
	row.Date = datetime.Truncate(row.Date)
	s.mu.Lock()
	defer s.mu.Unlock()
	days, ok := s.accounts[accountID]
	if !ok {
		days = make(map[time.Time]DailyMetrics)
		s.accounts[accountID] = days
	}
	days[row.Date] = row
}

// Accounts lists the stored account ids in sorted order.
func (s *MemorySource) Accounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fetch sums the rows of accountID between start and end inclusive. A field is
// present in the result when at least one row in range reported it. Money is
// summed in minor units.
func (s *MemorySource) Fetch(ctx context.Context, accountID string, start, end time.Time) (diagnosis.ActualAdMetrics, error) {
	if err := ctx.Err(); err != nil {
		return diagnosis.ActualAdMetrics{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	days, ok := s.accounts[strings.TrimSpace(accountID)]
	if !ok {
		return diagnosis.ActualAdMetrics{}, ErrAccountNotFound
	}

	var agg aggregate
	for date, row := range days {
		if datetime.WithinRange(date, start, end) {
			agg.add(row)
		}
	}
	return agg.metrics(), nil
}

type aggregate struct {
	spend, revenue                   *currency.Amount
	clicks, impressions, conversions *int64
}

func (a *aggregate) add(row DailyMetrics) {
	a.spend = addAmount(a.spend, row.Spend)
	a.revenue = addAmount(a.revenue, row.Revenue)
	a.clicks = addCount(a.clicks, row.Clicks)
	a.impressions = addCount(a.impressions, row.Impressions)
	a.conversions = addCount(a.conversions, row.Conversions)
}

func (a *aggregate) metrics() diagnosis.ActualAdMetrics {
	return diagnosis.ActualAdMetrics{
		Spend:       toFloat(a.spend),
		Clicks:      a.clicks,
		Impressions: a.impressions,
		Conversions: a.conversions,
		Revenue:     toFloat(a.revenue),
	}
}

func addAmount(total *currency.Amount, value *float64) *currency.Amount {
	if value == nil {
		return total
	}
	sum := currency.FromFloat(*value)
	if total != nil {
		sum += *total
	}
	return &sum
}

func addCount(total, value *int64) *int64 {
	if value == nil {
		return total
	}
	sum := *value
	if total != nil {
		sum += *total
	}
	return &sum
}

func toFloat(a *currency.Amount) *float64 {
	if a == nil {
		return nil
	}
	v := a.Float()
	return &v
}
