// Package money provides a validated decimal amount type used for all
// monetary values in the system. Amounts are immutable; arithmetic
// operations return new values.
package money

import (
	"github.com/shopspring/decimal"

	apperrors "centavo/internal/errors"
)

// MaxAmount is the largest amount the system accepts.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Amount is a positive monetary value with at most two decimal places.
// The zero value is not valid; construct amounts with New, FromFloat,
// or FromString.
type Amount struct {
	value decimal.Decimal
}

// New validates d and returns it as an Amount.
func New(d decimal.Decimal) (Amount, error) {
	if err := validate(d); err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

// FromFloat validates f and returns it as an Amount.
func FromFloat(f float64) (Amount, error) {
	return New(decimal.NewFromFloat(f))
}

// FromString parses s as a decimal and returns it as an Amount.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be a valid number")
	}
	return New(d)
}

func validate(d decimal.Decimal) error {
	if d.LessThanOrEqual(decimal.Zero) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount must be greater than zero")
	}
	if d.Exponent() < -2 {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount cannot have more than 2 decimal places")
	}
	if d.GreaterThan(MaxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "amount exceeds maximum allowed value")
	}
	return nil
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Float returns the amount as a float64 for display purposes.
func (a Amount) Float() float64 {
	f, _ := a.value.Float64()
	return f
}

// String formats the amount with exactly two decimal places.
func (a Amount) String() string {
	return a.value.StringFixed(2)
}

// Equal reports whether two amounts are numerically equal.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

// GreaterThan reports whether a > other.
func (a Amount) GreaterThan(other Amount) bool {
	return a.value.GreaterThan(other.value)
}

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool {
	return a.value.LessThan(other.value)
}

// Add returns a new validated Amount holding a + other.
func (a Amount) Add(other Amount) (Amount, error) {
	return New(a.value.Add(other.value))
}

// Sub returns a new validated Amount holding a - other. The result must
// remain a valid Amount, so subtracting to zero or below is an error.
func (a Amount) Sub(other Amount) (Amount, error) {
	return New(a.value.Sub(other.value))
}

// currencySymbols maps ISO codes to display symbols for Format.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"COP": "$",
}

// Format renders the amount prefixed with the symbol for the given
// currency code, falling back to the code itself when unknown.
func (a Amount) Format(currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	return symbol + a.value.StringFixed(2)
}
