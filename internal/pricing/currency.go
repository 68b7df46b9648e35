package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned when a currency code is absent from the rate table.
var ErrUnknownCurrency = errors.New("unknown currency")

// Currency is an ISO 4217 currency code.
type Currency string

const (
	PYG Currency = "PYG"
	USD Currency = "USD"
	BRL Currency = "BRL"
)

// RateTable maps a currency to its exchange rate relative to the reference
// currency. The reference currency carries rate 1; every conversion routes
// through it, cross-rates are never used.
type RateTable map[Currency]decimal.Decimal

// DefaultRates returns the rate table used when none is configured. Guaraní is
// the reference currency in which all catalog prices are stored.
func DefaultRates() RateTable {
	return RateTable{
		PYG: decimal.NewFromInt(1),
		USD: decimal.RequireFromString("0.00013"),
	}
}

// Rate looks up the exchange rate for the given currency.
func (t RateTable) Rate(c Currency) (decimal.Decimal, error) {
	rate, ok := t[c]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, c)
	}
	return rate, nil
}

// Normalize converts an amount expressed in the reference currency into the
// target display currency.
func (t RateTable) Normalize(amountRef decimal.Decimal, target Currency) (decimal.Decimal, error) {
	rate, err := t.Rate(target)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amountRef.Mul(rate), nil
}

// Convert re-expresses an amount held in one display currency in another,
// routing through the reference currency. Fixed-value discounts use this when
// the cart currency changes so they scale with the cart instead of staying
// numerically fixed.
func (t RateTable) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	fromRate, err := t.Rate(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := t.Rate(to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return amount.Div(fromRate).Mul(toRate), nil
}

// Scale returns the number of decimal places amounts are displayed with.
// Guaraní has no minor unit.
func (c Currency) Scale() int32 {
	if c == PYG {
		return 0
	}
	return 2
}

// RoundDisplay truncates an amount to the currency's display scale.
func RoundDisplay(amount decimal.Decimal, c Currency) decimal.Decimal {
	return amount.Truncate(c.Scale())
}
