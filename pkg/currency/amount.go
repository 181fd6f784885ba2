// Package currency provides an exact money type counted in minor units.
package currency

import (
	"fmt"

	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

// Amount is a money value in minor units (cents) of the plan's base currency.
// The currency itself is resolved by the caller.
type Amount int64

// FromFloat converts a base-unit value into minor units, rounding half away
// from zero. The float is read through its shortest decimal representation so
// 0.29 becomes 29 cents, not 28.
func FromFloat(value float64) Amount {
	return FromDecimal(decimal.NewFromFloat(value))
}

// FromDecimal converts an exact base-unit decimal into minor units.
func FromDecimal(value decimal.Decimal) Amount {
	return Amount(value.Shift(constants.MinorUnitDigits).Round(0).IntPart())
}

// Decimal returns the amount in base units as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -constants.MinorUnitDigits)
}

// Float returns the amount in base units. Use only for display and ratios.
func (a Amount) Float() float64 {
	return a.Decimal().InexactFloat64()
}

// String renders the amount in base units with a fixed number of decimals.
func (a Amount) String() string {
	return a.Decimal().StringFixed(constants.MinorUnitDigits)
}

// MarshalJSON emits the amount as a JSON number in base units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number (or quoted number) in base units.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid currency amount %s: %w", string(data), err)
	}
	*a = FromDecimal(d)
	return nil
}
