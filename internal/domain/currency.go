package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency codes shipped in the default configuration.
const (
	USD = "USD"
	NGN = "NGN"
	EUR = "EUR"
	GBP = "GBP"
)

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CurrencySet is the set of supported currencies and their opening balances.
// Opening balances are also the values a corrupt persisted balance is reset to.
type CurrencySet struct {
	codes    []string
	openings map[string]decimal.Decimal
}

// NewCurrencySet builds a CurrencySet. Currencies that only appear in openings
// are appended to the supported codes in sorted order.
func NewCurrencySet(codes []string, openings map[string]decimal.Decimal) CurrencySet {
	set := CurrencySet{openings: make(map[string]decimal.Decimal, len(openings))}
	seen := make(map[string]bool)

	for _, c := range codes {
		c = NormalizeCurrency(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		set.codes = append(set.codes, c)
	}

	var extra []string
	for c, amount := range openings {
		c = NormalizeCurrency(c)
		if c == "" {
			continue
		}
		set.openings[c] = amount
		if !seen[c] {
			seen[c] = true
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	set.codes = append(set.codes, extra...)

	return set
}

// Codes returns the supported currency codes in configuration order.
func (s CurrencySet) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Supports reports whether code is a supported currency.
func (s CurrencySet) Supports(code string) bool {
	for _, c := range s.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Opening returns the opening balance for code, zero when none is configured.
func (s CurrencySet) Opening(code string) decimal.Decimal {
	if v, ok := s.openings[code]; ok {
		return v
	}
	return decimal.Zero
}

// OpeningBalances returns the opening balance of every supported currency.
func (s CurrencySet) OpeningBalances() Balances {
	b := make(Balances, len(s.codes))
	for _, c := range s.codes {
		b[c] = s.Opening(c)
	}
	return b
}
