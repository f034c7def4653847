package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// TransactionLog defines the log queries needed by EntryHandler.
type TransactionLog interface {
	Filter(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	factory usecase.EntryFactory
	ledger  usecase.EntryApplier
	log     TransactionLog
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(factory usecase.EntryFactory, ledger usecase.EntryApplier, log TransactionLog) *EntryHandler {
	return &EntryHandler{factory: factory, ledger: ledger, log: log}
}

// Create builds an entry from the request and applies it.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid entry", err)
		return
	}

	entry, err := h.ledger.ApplyEntry(r.Context(), h.factory.CreateEntry(input))
	if err != nil {
		writeDomainError(w, "failed to apply entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// List returns the transaction log, most recent first, filtered by the
// q, currency, type, from, to, limit and offset query parameters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEntryFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	entries, err := h.log.Filter(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// parseEntryFilter reads an EntryFilter from the query string. Bounds are
// RFC3339 timestamps and are inclusive.
func parseEntryFilter(r *http.Request) (domain.EntryFilter, error) {
	q := r.URL.Query()
	filter := domain.EntryFilter{
		Query:    q.Get("q"),
		Currency: domain.NormalizeCurrency(q.Get("currency")),
		Type:     domain.EntryType(q.Get("type")),
		Limit:    parseIntQuery(r, "limit", 0),
		Offset:   parseIntQuery(r, "offset", 0),
	}

	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.EntryFilter{}, fmt.Errorf("invalid '%s' format (use RFC3339): %w", key, err)
		}
		*dst = &at
	}

	return filter, nil
}
