package handler

import (
	"context"
	"net/http"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
)

// SettingsService defines the behavior needed by SettingsHandler.
type SettingsService interface {
	BaseCurrency() string
	SetBaseCurrency(ctx context.Context, code string) error
}

// SettingsHandler handles the base currency setting.
type SettingsHandler struct {
	settingsUC SettingsService
	supported  []string
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsUC SettingsService, supported []string) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC, supported: supported}
}

// GetBaseCurrency returns the active base currency.
func (h *SettingsHandler) GetBaseCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response())
}

// SetBaseCurrency changes the active base currency.
func (h *SettingsHandler) SetBaseCurrency(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBaseCurrencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.settingsUC.SetBaseCurrency(r.Context(), req.Currency); err != nil {
		writeDomainError(w, "failed to set base currency", err)
		return
	}

	writeJSON(w, http.StatusOK, h.response())
}

func (h *SettingsHandler) response() dto.BaseCurrencyResponse {
	return dto.BaseCurrencyResponse{
		Currency:  h.settingsUC.BaseCurrency(),
		Supported: h.supported,
	}
}
