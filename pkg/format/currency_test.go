package format

import (
	"testing"

	"github.com/iwvelando/campaign-planner/pkg/currency"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   currency.Amount
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Cents only", 5, "$0.05"},
		{"Thousands", 123456, "$1,234.56"},
		{"Millions", 750000000, "$7,500,000.00"},
		{"Negative", -123456, "-$1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%d) = %q, expected %q", int64(tt.amount), got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-7500000); got != "-75,000.00" {
		t.Errorf("NumericCurrency() = %q", got)
	}
}

func TestCount(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		15000:   "15,000",
		1234567: "1,234,567",
		-4200:   "-4,200",
	}
	for input, expected := range tests {
		if got := Count(input); got != expected {
			t.Errorf("Count(%d) = %q, expected %q", input, got, expected)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(4); got != "4.00x" {
		t.Errorf("Ratio(4) = %q", got)
	}
}
