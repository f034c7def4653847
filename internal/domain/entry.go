package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a movement.
type EntryType string

const (
	EntryTypeAddMoney   EntryType = "add_money"
	EntryTypeWithdrawal EntryType = "withdrawal"
	EntryTypeTransfer   EntryType = "transfer"
	EntryTypeScanPay    EntryType = "scan_pay"
	EntryTypeExchange   EntryType = "exchange"
	EntryTypeGeneric    EntryType = "generic"
)

// Title returns a human readable label for the type.
func (t EntryType) Title() string {
	switch t {
	case EntryTypeAddMoney:
		return "Add money"
	case EntryTypeWithdrawal:
		return "Withdrawal"
	case EntryTypeTransfer:
		return "Transfer"
	case EntryTypeScanPay:
		return "Scan to pay"
	case EntryTypeExchange:
		return "Exchange"
	case "":
		return "Entry"
	default:
		s := strings.ReplaceAll(string(t), "_", " ")
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// Entry is an immutable record of one signed movement against one currency.
// Positive amounts are credits, negative amounts are debits. BaseEquiv and
// FXRateUsed are a snapshot taken against BaseCurrency when the entry was
// created and are never recomputed.
type Entry struct {
	CreatedAt    time.Time
	Metadata     map[string]any
	ID           string
	Type         EntryType
	Title        string
	Icon         string
	Currency     string
	BaseCurrency string
	Amount       decimal.Decimal
	BaseEquiv    decimal.Decimal
	FXRateUsed   decimal.Decimal
}

// IsDebit reports whether the entry takes money out of its wallet.
func (e *Entry) IsDebit() bool {
	return e.Amount.IsNegative()
}

// Newer reports whether e sorts before other in the log: a later CreatedAt,
// or the larger ID when both were created at the same instant.
func (e *Entry) Newer(other *Entry) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.After(other.CreatedAt)
	}
	return e.ID > other.ID
}

// Clone returns a copy of e that shares no metadata with it.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := *e
	if e.Metadata != nil {
		out.Metadata = cloneValue(e.Metadata).(map[string]any)
	}
	return &out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[k] = item
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// SearchText is the text free-text queries are matched against: title, type,
// currency and a JSON rendering of the metadata, lower-cased.
func (e *Entry) SearchText() string {
	var b strings.Builder
	b.WriteString(e.Title)
	b.WriteByte(' ')
	b.WriteString(string(e.Type))
	b.WriteByte(' ')
	b.WriteString(e.Currency)
	if len(e.Metadata) > 0 {
		if meta, err := json.Marshal(e.Metadata); err == nil {
			b.WriteByte(' ')
			b.Write(meta)
		}
	}
	return strings.ToLower(b.String())
}

// NormalizeMetadata returns v when it is a string-keyed map and an empty map
// otherwise.
func NormalizeMetadata(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return map[string]any{}
		}
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	default:
		return map[string]any{}
	}
}
