package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Balances maps a currency code to the amount currently held in it.
type Balances map[string]decimal.Decimal

// Get returns the balance for currency. Unknown currencies read as zero.
func (b Balances) Get(currency string) decimal.Decimal {
	if v, ok := b[currency]; ok {
		return v
	}
	return decimal.Zero
}

// Clone returns a copy that can be mutated independently.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Currencies returns the currency codes held, sorted.
func (b Balances) Currencies() []string {
	codes := make([]string, 0, len(b))
	for c := range b {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// ApplyAmount returns the balance currency would have after amount is applied.
// When overdraft is not allowed, a debit that leaves the balance negative fails.
func (b Balances) ApplyAmount(currency string, amount decimal.Decimal, allowOverdraft bool) (decimal.Decimal, error) {
	current := b.Get(currency)
	next := current.Add(amount)
	if !allowOverdraft && amount.IsNegative() && next.IsNegative() {
		return current, fmt.Errorf("%w: %s balance %s cannot cover %s", ErrInsufficientFunds, currency, current, amount.Neg())
	}
	return next, nil
}

// RepairBalances turns a raw persisted balances record into Balances.
// Every supported currency ends up present: a missing or non-numeric value is
// replaced by the currency's opening balance. Unsupported currencies are kept
// when they parse and dropped otherwise. The second result lists the codes that
// had to be repaired, sorted.
func RepairBalances(raw map[string]string, set CurrencySet) (Balances, []string) {
	out := make(Balances, len(set.codes))
	var repaired []string

	for _, c := range set.codes {
		value, ok := raw[c]
		if !ok {
			out[c] = set.Opening(c)
			repaired = append(repaired, c)
			continue
		}
		amount, err := parseStoredAmount(value)
		if err != nil {
			out[c] = set.Opening(c)
			repaired = append(repaired, c)
			continue
		}
		out[c] = amount
	}

	for c, value := range raw {
		if set.Supports(c) {
			continue
		}
		amount, err := parseStoredAmount(value)
		if err != nil {
			repaired = append(repaired, c)
			continue
		}
		out[c] = amount
	}

	sort.Strings(repaired)
	return out, repaired
}

func parseStoredAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrMalformedPersistedState)
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedPersistedState, err)
	}
	return amount, nil
}
