package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in integer minor units (cents).
// Keeping money as integers makes every comparison exact; decimal is only
// used at the parse/format boundary so sub-cent inputs can be rejected
// instead of silently rounded.
type Amount int64

// MinUnit is the smallest representable increment, one cent.
const MinUnit Amount = 1

// FromDecimal converts a decimal value to minor units. Values with more
// than two fractional digits are rejected.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("money: %s has sub-cent precision", d.String())
	}
	return Amount(shifted.IntPart()), nil
}

// Parse converts a decimal string like "10.50" to minor units.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: %q is not a decimal amount: %w", s, err)
	}
	return FromDecimal(d)
}

// FromCents builds an Amount from a raw minor-unit count, e.g. a DB column.
func FromCents(n int64) Amount { return Amount(n) }

// Cents returns the raw minor-unit count for persistence.
func (a Amount) Cents() int64 { return int64(a) }

// Decimal returns the exact decimal representation of the amount.
func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -2) }

func (a Amount) String() string { return a.Decimal().StringFixed(2) }

// MarshalJSON encodes the amount as a plain JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
