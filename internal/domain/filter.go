package domain

import (
	"strings"
	"time"
)

// EntryFilter selects entries from the transaction log. Zero fields match
// everything. From and To are inclusive bounds on CreatedAt. A zero Limit
// means no limit.
type EntryFilter struct {
	From     *time.Time
	To       *time.Time
	Query    string
	Currency string
	Type     EntryType
	Limit    int
	Offset   int
}

// Matches reports whether e satisfies every criterion of the filter.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.Currency != "" && e.Currency != f.Currency {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		return strings.Contains(e.SearchText(), strings.ToLower(q))
	}
	return true
}

// Apply returns the matching entries in their original order, paginated.
func (f EntryFilter) Apply(entries []*Entry) []*Entry {
	limit, offset := ValidatePagination(f.Limit, f.Offset)

	out := make([]*Entry, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if !f.Matches(e) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
