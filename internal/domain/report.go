package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// snapshotPrecision is the number of decimal places used when checking that a
// stored base equivalent matches its amount and rate.
const snapshotPrecision = 8

// CurrencySummary aggregates the entries of one currency.
type CurrencySummary struct {
	Currency  string
	Credits   decimal.Decimal
	Debits    decimal.Decimal
	Net       decimal.Decimal
	BaseTotal map[string]decimal.Decimal // sum of BaseEquiv per base currency
	Count     int
}

// Summarize groups entries by currency. Debits are reported as a positive
// magnitude. The result is sorted by currency code.
func Summarize(entries []*Entry) []CurrencySummary {
	byCurrency := make(map[string]*CurrencySummary)
	for _, e := range entries {
		s, ok := byCurrency[e.Currency]
		if !ok {
			s = &CurrencySummary{
				Currency:  e.Currency,
				BaseTotal: make(map[string]decimal.Decimal),
			}
			byCurrency[e.Currency] = s
		}
		s.Count++
		if e.IsDebit() {
			s.Debits = s.Debits.Add(e.Amount.Neg())
		} else {
			s.Credits = s.Credits.Add(e.Amount)
		}
		s.Net = s.Net.Add(e.Amount)
		s.BaseTotal[e.BaseCurrency] = s.BaseTotal[e.BaseCurrency].Add(e.BaseEquiv)
	}

	out := make([]CurrencySummary, 0, len(byCurrency))
	for _, s := range byCurrency {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// SnapshotConsistent reports whether BaseEquiv equals |Amount| * FXRateUsed.
func (e *Entry) SnapshotConsistent() bool {
	want := e.Amount.Abs().Mul(e.FXRateUsed).Round(snapshotPrecision)
	return want.Equal(e.BaseEquiv.Round(snapshotPrecision))
}

// ConsistencyReport is the result of checking the transaction log.
type ConsistencyReport struct {
	Inconsistent []string // ids of entries whose FX snapshot does not add up
	OutOfOrder   []string // ids of entries newer than their predecessor
	Checked      int
}

// Consistent reports whether no problem was found.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Inconsistent) == 0 && len(r.OutOfOrder) == 0
}

// CheckLog verifies FX snapshots and most-recent-first ordering of a log.
func CheckLog(entries []*Entry) *ConsistencyReport {
	report := &ConsistencyReport{Checked: len(entries)}
	for i, e := range entries {
		if !e.SnapshotConsistent() {
			report.Inconsistent = append(report.Inconsistent, e.ID)
		}
		if i > 0 && e.CreatedAt.After(entries[i-1].CreatedAt) {
			report.OutOfOrder = append(report.OutOfOrder, e.ID)
		}
	}
	return report
}
