package handler

import (
	"context"
	"net/http"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	AddMoney(ctx context.Context, input usecase.AddMoneyInput) (*domain.Entry, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Entry, error)
	Send(ctx context.Context, input usecase.SendInput) (*domain.Entry, error)
	ScanPay(ctx context.Context, input usecase.ScanPayInput) (*domain.Entry, error)
	Exchange(ctx context.Context, input usecase.ExchangeInput) ([]*domain.Entry, error)
}

// MovementHandler handles typed wallet movements.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// AddMoney credits a wallet.
func (h *MovementHandler) AddMoney(w http.ResponseWriter, r *http.Request) {
	var req dto.AddMoneyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	entry, err := h.movementUC.AddMoney(r.Context(), input)
	h.writeEntry(w, entry, err)
}

// Withdraw debits a wallet towards an external destination.
func (h *MovementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	entry, err := h.movementUC.Withdraw(r.Context(), input)
	h.writeEntry(w, entry, err)
}

// Send debits a wallet towards a recipient.
func (h *MovementHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req dto.SendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	entry, err := h.movementUC.Send(r.Context(), input)
	h.writeEntry(w, entry, err)
}

// ScanPay debits a wallet towards a merchant.
func (h *MovementHandler) ScanPay(w http.ResponseWriter, r *http.Request) {
	var req dto.ScanPayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	entry, err := h.movementUC.ScanPay(r.Context(), input)
	h.writeEntry(w, entry, err)
}

// Exchange converts between two wallets and returns the debit and the credit.
func (h *MovementHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req dto.ExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	entries, err := h.movementUC.Exchange(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to exchange", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntriesFromDomain(entries))
}

func (h *MovementHandler) writeEntry(w http.ResponseWriter, entry *domain.Entry, err error) {
	if err != nil {
		writeDomainError(w, "failed to apply movement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
