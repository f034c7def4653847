package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RateSource tells how a rate was obtained from the table.
type RateSource string

const (
	// RateIdentity is used when both sides are the same currency.
	RateIdentity RateSource = "identity"
	// RateExact is a direct table entry.
	RateExact RateSource = "exact"
	// RateInverted is the reciprocal of the reverse table entry.
	RateInverted RateSource = "inverted"
	// RateDefaulted is the 1:1 approximation used when nothing matches.
	RateDefaulted RateSource = "defaulted"
)

// RateResolution is the outcome of looking up a pair in a RateTable.
type RateResolution struct {
	From   string
	To     string
	Rate   decimal.Decimal
	Source RateSource
}

// Approximate reports whether the rate is a fallback rather than a known rate.
func (r RateResolution) Approximate() bool {
	return r.Source == RateDefaulted
}

// RateTable holds currency pair multipliers such that
// amount_in_to = amount_in_from * Rates[from][to].
type RateTable struct {
	UpdatedAt time.Time
	Rates     map[string]map[string]decimal.Decimal
	Version   int
}

// NewRateTable builds a table from pair multipliers. Codes are normalized and
// non-positive multipliers are dropped.
func NewRateTable(version int, updatedAt time.Time, rates map[string]map[string]decimal.Decimal) *RateTable {
	t := &RateTable{
		Version:   version,
		UpdatedAt: updatedAt,
		Rates:     make(map[string]map[string]decimal.Decimal),
	}
	for from, row := range rates {
		for to, rate := range row {
			t.set(from, to, rate)
		}
	}
	return t
}

func (t *RateTable) set(from, to string, rate decimal.Decimal) bool {
	from, to = NormalizeCurrency(from), NormalizeCurrency(to)
	if from == "" || to == "" || !rate.IsPositive() {
		return false
	}
	row, ok := t.Rates[from]
	if !ok {
		row = make(map[string]decimal.Decimal)
		t.Rates[from] = row
	}
	row[to] = rate
	return true
}

func (t *RateTable) lookup(from, to string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	rate, ok := t.Rates[from][to]
	if !ok || rate.IsZero() {
		return decimal.Zero, false
	}
	return rate, true
}

// Resolve looks up from→to: identity, then the direct entry, then the
// reciprocal of the reverse entry, else a defaulted 1.
func (t *RateTable) Resolve(from, to string) RateResolution {
	from, to = NormalizeCurrency(from), NormalizeCurrency(to)
	res := RateResolution{From: from, To: to}
	switch {
	case from == to:
		res.Rate, res.Source = one, RateIdentity
	default:
		if rate, ok := t.lookup(from, to); ok {
			res.Rate, res.Source = rate, RateExact
		} else if rate, ok := t.lookup(to, from); ok {
			res.Rate, res.Source = one.Div(rate), RateInverted
		} else {
			res.Rate, res.Source = one, RateDefaulted
		}
	}
	return res
}

// Rate returns the multiplier for from→to. It never fails.
func (t *RateTable) Rate(from, to string) decimal.Decimal {
	return t.Resolve(from, to).Rate
}

// Convert converts amount from one currency to another.
func (t *RateTable) Convert(from, to string, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(t.Rate(from, to))
}

// With returns a copy of the table with from→to set to rate.
func (t *RateTable) With(from, to string, rate decimal.Decimal) (*RateTable, error) {
	if !rate.IsPositive() {
		return nil, ErrInvalidRate
	}
	next := t.Clone()
	next.set(from, to, rate)
	return next, nil
}

// Clone returns a deep copy.
func (t *RateTable) Clone() *RateTable {
	if t == nil {
		return NewRateTable(0, time.Time{}, nil)
	}
	return NewRateTable(t.Version, t.UpdatedAt, t.Rates)
}

// RatePair is one row of a flattened table.
type RatePair struct {
	From string
	To   string
	Rate decimal.Decimal
}

// Pairs returns the table's entries sorted by from then to.
func (t *RateTable) Pairs() []RatePair {
	var pairs []RatePair
	for from, row := range t.Rates {
		for to, rate := range row {
			pairs = append(pairs, RatePair{From: from, To: to, Rate: rate})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	return pairs
}

// PersistedRates is the stored form of a rate table. Payload is a JSON object
// of objects, {"USD": {"NGN": "1650"}}; leaves may be strings or numbers.
type PersistedRates struct {
	UpdatedAt time.Time `json:"updated_at"`
	Payload   []byte    `json:"payload"`
	Version   int       `json:"version"`
}

// EncodeRates converts a table to its stored form.
func EncodeRates(t *RateTable) *PersistedRates {
	rows := make(map[string]map[string]string, len(t.Rates))
	for from, row := range t.Rates {
		out := make(map[string]string, len(row))
		for to, rate := range row {
			out[to] = rate.String()
		}
		rows[from] = out
	}
	// a map of strings cannot fail to marshal
	payload, _ := json.Marshal(rows)
	return &PersistedRates{Version: t.Version, UpdatedAt: t.UpdatedAt, Payload: payload}
}

// DecodeRates validates a stored rate table. Unparseable or non-positive
// multipliers are dropped; clean is false when anything had to be dropped.
// A payload that is not a JSON object yields a nil table.
func DecodeRates(p *PersistedRates) (table *RateTable, clean bool) {
	if p == nil {
		return nil, false
	}

	var rows map[string]json.RawMessage
	if err := json.Unmarshal(p.Payload, &rows); err != nil || rows == nil {
		return nil, false
	}

	table = NewRateTable(p.Version, p.UpdatedAt, nil)
	clean = true
	for from, rawRow := range rows {
		var row map[string]json.RawMessage
		if err := json.Unmarshal(rawRow, &row); err != nil || row == nil {
			clean = false
			continue
		}
		for to, rawRate := range row {
			rate, err := decodeRate(rawRate)
			if err != nil || !table.set(from, to, rate) {
				clean = false
			}
		}
	}
	return table, clean
}

func decodeRate(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
	} else {
		s = string(raw)
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}
