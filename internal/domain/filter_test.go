package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleLog(base time.Time) []*Entry {
	// most recent first
	return []*Entry{
		{ID: "4", Type: EntryTypeScanPay, Title: "Paid Chicken Republic", Currency: "NGN",
			Amount: decimal.NewFromInt(-3000), Metadata: map[string]any{"merchant": "Chicken Republic"}, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "3", Type: EntryTypeTransfer, Title: "Sent to Ada", Currency: "USD",
			Amount: decimal.NewFromInt(-20), Metadata: map[string]any{"recipient": map[string]any{"name": "Ada", "bank": "GTBank"}}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", Type: EntryTypeAddMoney, Title: "Added USD", Currency: "USD",
			Amount: decimal.NewFromInt(50), CreatedAt: base.Add(time.Hour)},
		{ID: "1", Type: EntryTypeAddMoney, Title: "Added NGN", Currency: "NGN",
			Amount: decimal.NewFromInt(10000), CreatedAt: base},
	}
}

func TestEntryFilterApply(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	log := sampleLog(base)
	at := func(d time.Duration) *time.Time {
		v := base.Add(d)
		return &v
	}

	tests := []struct {
		name   string
		filter EntryFilter
		want   []string
	}{
		{"zero filter matches all", EntryFilter{}, []string{"4", "3", "2", "1"}},
		{"currency", EntryFilter{Currency: "USD"}, []string{"3", "2"}},
		{"type", EntryFilter{Type: EntryTypeAddMoney}, []string{"2", "1"}},
		{"query matches title case-insensitively", EntryFilter{Query: "CHICKEN"}, []string{"4"}},
		{"query matches nested metadata", EntryFilter{Query: "gtbank"}, []string{"3"}},
		{"query matches type", EntryFilter{Query: "scan_pay"}, []string{"4"}},
		{"inclusive range", EntryFilter{From: at(time.Hour), To: at(2 * time.Hour)}, []string{"3", "2"}},
		{"from just after excludes", EntryFilter{From: at(time.Hour + time.Millisecond), To: at(2 * time.Hour)}, []string{"3"}},
		{"to just before excludes", EntryFilter{From: at(time.Hour), To: at(2*time.Hour - time.Millisecond)}, []string{"2"}},
		{"limit", EntryFilter{Limit: 2}, []string{"4", "3"}},
		{"offset", EntryFilter{Offset: 3}, []string{"1"}},
		{"combined with pagination", EntryFilter{Currency: "NGN", Offset: 1, Limit: 5}, []string{"1"}},
		{"no match", EntryFilter{Currency: "EUR"}, []string{}},
	}

	for _, tt := range tests {
		got := tt.filter.Apply(log)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %v, got %d entries", tt.name, tt.want, len(got))
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Fatalf("%s: position %d expected %s, got %s", tt.name, i, id, got[i].ID)
			}
		}
	}
}
