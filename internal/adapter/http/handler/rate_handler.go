package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
)

// RateService defines the behavior needed by RateHandler.
type RateService interface {
	Table() *domain.RateTable
	Resolve(from, to string) domain.RateResolution
	ReplaceRates(ctx context.Context, rates map[string]map[string]decimal.Decimal) (*domain.RateTable, error)
	SetRate(ctx context.Context, from, to string, rate decimal.Decimal) (*domain.RateTable, error)
}

// RateHandler handles rate-related HTTP requests.
type RateHandler struct {
	rateUC RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC RateService) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// Get returns the rate table.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.RateTableFromDomain(h.rateUC.Table()))
}

// Replace stores a whole new rate table.
func (h *RateHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req dto.ReplaceRatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rates, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, "invalid rates", err)
		return
	}

	table, err := h.rateUC.ReplaceRates(r.Context(), rates)
	if err != nil {
		writeDomainError(w, "failed to replace rates", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RateTableFromDomain(table))
}

// SetPair sets the rate of one pair.
func (h *RateHandler) SetPair(w http.ResponseWriter, r *http.Request) {
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")

	var req dto.SetRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rate, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, "invalid rate", err)
		return
	}

	table, err := h.rateUC.SetRate(r.Context(), from, to, rate)
	if err != nil {
		writeDomainError(w, "failed to set rate", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RateTableFromDomain(table))
}

// Resolve tells which rate a pair resolves to.
func (h *RateHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	from, to, ok := pairQuery(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.RateResolutionFromDomain(h.rateUC.Resolve(from, to)))
}

// Convert converts an amount between two currencies.
func (h *RateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	from, to, ok := pairQuery(w, r)
	if !ok {
		return
	}

	amount, err := domain.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		writeDomainError(w, "invalid amount", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionFromDomain(h.rateUC.Resolve(from, to), amount))
}

func pairQuery(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	from := domain.NormalizeCurrency(r.URL.Query().Get("from"))
	to := domain.NormalizeCurrency(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing 'from' or 'to' parameter", "")
		return "", "", false
	}
	return from, to, true
}
