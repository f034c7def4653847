// Package money renders wallet amounts for people.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// Format renders amount with the symbol and grouping of currency, rounded to
// the currency's minor unit. Unknown currencies are rendered as
// "<amount> <code>" with two decimals.
func Format(amount decimal.Decimal, currency string) string {
	currency = domain.NormalizeCurrency(currency)

	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// Fraction returns the number of minor-unit digits of currency, 2 when the
// currency is unknown.
func Fraction(currency string) int32 {
	if cur := money.GetCurrency(domain.NormalizeCurrency(currency)); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}
