// Package money turns amount strings lifted from statements into integer minor
// units, using decimal arithmetic and the ISO-4217 fraction of the currency.
package money

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	INR = "INR"
)

// DefaultCurrency is assumed when the statement carries no currency marker.
const DefaultCurrency = USD

var (
	ErrEmptyAmount    = errors.New("empty amount")
	ErrAmountOverflow = errors.New("amount does not fit in int64 minor units")
)

var (
	// "45,00" or "1234,5": a single comma with one or two digits after it and no dot
	decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)

	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// markers maps the lower-cased currency marker found next to an amount to its ISO code.
var markers = map[string]string{
	"rs":  INR,
	"rs.": INR,
	"inr": INR,
	"₹":   INR,
	"$":   USD,
	"usd": USD,
	"€":   EUR,
	"eur": EUR,
	"£":   GBP,
	"gbp": GBP,
}

// CurrencyFromMarker resolves a currency marker such as "Rs." or "€". The second
// return value is false when the marker is empty or unknown.
func CurrencyFromMarker(marker string) (string, bool) {
	code, ok := markers[strings.ToLower(strings.TrimSpace(marker))]
	if !ok || money.GetCurrency(code) == nil {
		return "", false
	}
	return code, true
}

// ParseAmount parses "12,450.00" style amounts. Commas are thousands separators
// (Indian 1,23,456 grouping included), except in the "45,00" shape where the
// comma is the decimal separator.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if decimalComma.MatchString(amount) {
		amount = strings.Replace(amount, ",", ".", 1)
	} else {
		amount = strings.ReplaceAll(amount, ",", "")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return d, nil
}

// ToMinor converts an amount string to minor units of currencyCode. Unknown
// codes fall back to DefaultCurrency.
func ToMinor(amount, currencyCode string) (int64, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}

	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(DefaultCurrency)
	}

	minor := d.Shift(int32(currency.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("%s %s: %w", amount, currency.Code, ErrAmountOverflow)
	}
	return minor.IntPart(), nil
}
