package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/fxwallet/internal/adapter/http/dto"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Summary(ctx context.Context, filter domain.EntryFilter) (*usecase.SummaryResult, error)
	CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error)
}

// ReportHandler serves ledger reports.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Summary returns per-currency totals for the entries matching the query.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEntryFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	summary, err := h.reportUC.Summary(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(summary))
}

// Consistency checks the transaction log. An inconsistent log is reported
// with 409 Conflict and the offending entry ids.
func (h *ReportHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportUC.CheckConsistency(r.Context())
	switch {
	case errors.Is(err, usecase.ErrInconsistentLedger):
		writeJSON(w, http.StatusConflict, dto.ConsistencyFromDomain(report))
	case err != nil:
		writeDomainError(w, "failed to check consistency", err)
	default:
		writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(report))
	}
}
