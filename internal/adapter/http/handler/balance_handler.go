package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// BalanceResetter replaces the stored balances.
type BalanceResetter interface {
	ResetBalances(ctx context.Context, balances domain.Balances) error
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balances usecase.BalanceReader
	resetter BalanceResetter
	rates    usecase.RateResolver
	settings usecase.BaseCurrencyProvider
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(
	balances usecase.BalanceReader,
	resetter BalanceResetter,
	rates usecase.RateResolver,
	settings usecase.BaseCurrencyProvider,
) *BalanceHandler {
	return &BalanceHandler{
		balances: balances,
		resetter: resetter,
		rates:    rates,
		settings: settings,
	}
}

// Get returns every balance and their total in the base currency.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	balances, err := h.balances.GetBalances(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get balances", err)
		return
	}

	writeJSON(w, http.StatusOK, h.response(balances))
}

// Replace overwrites the stored balances.
func (h *BalanceHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBalancesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balances, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, "invalid balances", err)
		return
	}

	if err := h.resetter.ResetBalances(r.Context(), balances); err != nil {
		writeDomainError(w, "failed to set balances", err)
		return
	}

	h.Get(w, r)
}

func (h *BalanceHandler) response(balances domain.Balances) *dto.BalancesResponse {
	base := h.settings.BaseCurrency()
	total := decimal.Zero
	for _, c := range balances.Currencies() {
		total = total.Add(h.rates.Convert(c, base, balances[c]))
	}
	return dto.BalancesFromDomain(balances, base, total)
}
