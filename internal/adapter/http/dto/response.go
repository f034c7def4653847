package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/money"
	"github.com/iho/fxwallet/internal/usecase"
)

// BalanceResponse represents one wallet in API responses.
type BalanceResponse struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Display  string          `json:"display"`
}

// BalancesResponse lists every wallet with its value in the base currency.
type BalancesResponse struct {
	BaseCurrency string            `json:"base_currency"`
	Total        decimal.Decimal   `json:"total"`
	TotalDisplay string            `json:"total_display"`
	Balances     []BalanceResponse `json:"balances"`
}

// BalancesFromDomain converts balances to a response sorted by currency.
// total is the sum of every balance converted to base.
func BalancesFromDomain(b domain.Balances, base string, total decimal.Decimal) *BalancesResponse {
	resp := &BalancesResponse{
		BaseCurrency: base,
		Total:        total,
		TotalDisplay: money.Format(total, base),
		Balances:     make([]BalanceResponse, 0, len(b)),
	}
	for _, c := range b.Currencies() {
		resp.Balances = append(resp.Balances, BalanceResponse{
			Currency: c,
			Amount:   b[c],
			Display:  money.Format(b[c], c),
		})
	}
	return resp
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	CreatedAt    time.Time       `json:"created_at"`
	Metadata     map[string]any  `json:"metadata"`
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Icon         string          `json:"icon,omitempty"`
	Currency     string          `json:"currency"`
	Display      string          `json:"display"`
	BaseCurrency string          `json:"base_currency"`
	BaseDisplay  string          `json:"base_display"`
	Amount       decimal.Decimal `json:"amount"`
	BaseEquiv    decimal.Decimal `json:"base_equiv"`
	FXRateUsed   decimal.Decimal `json:"fx_rate_used"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		Type:         string(e.Type),
		Title:        e.Title,
		Icon:         e.Icon,
		Currency:     e.Currency,
		Amount:       e.Amount,
		Display:      money.Format(e.Amount, e.Currency),
		BaseCurrency: e.BaseCurrency,
		BaseEquiv:    e.BaseEquiv,
		BaseDisplay:  money.Format(e.BaseEquiv, e.BaseCurrency),
		FXRateUsed:   e.FXRateUsed,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// RatePairResponse is one row of the rate table.
type RatePairResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// RateTableResponse represents the rate table.
type RateTableResponse struct {
	UpdatedAt time.Time          `json:"updated_at"`
	Rates     []RatePairResponse `json:"rates"`
	Version   int                `json:"version"`
}

// RateTableFromDomain converts a rate table to response.
func RateTableFromDomain(t *domain.RateTable) *RateTableResponse {
	resp := &RateTableResponse{
		Version:   t.Version,
		UpdatedAt: t.UpdatedAt,
		Rates:     []RatePairResponse{},
	}
	for _, p := range t.Pairs() {
		resp.Rates = append(resp.Rates, RatePairResponse{From: p.From, To: p.To, Rate: p.Rate})
	}
	return resp
}

// RateResolutionResponse tells which rate a pair resolves to and how.
type RateResolutionResponse struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Source      string          `json:"source"`
	Rate        decimal.Decimal `json:"rate"`
	Approximate bool            `json:"approximate"`
}

// RateResolutionFromDomain converts a resolution to response.
func RateResolutionFromDomain(r domain.RateResolution) *RateResolutionResponse {
	return &RateResolutionResponse{
		From:        r.From,
		To:          r.To,
		Source:      string(r.Source),
		Rate:        r.Rate,
		Approximate: r.Approximate(),
	}
}

// ConversionResponse represents the result of a conversion.
type ConversionResponse struct {
	RateResolutionResponse
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
	Display   string          `json:"display"`
}

// ConversionFromDomain builds a conversion response.
func ConversionFromDomain(r domain.RateResolution, amount decimal.Decimal) *ConversionResponse {
	converted := amount.Mul(r.Rate)
	return &ConversionResponse{
		RateResolutionResponse: *RateResolutionFromDomain(r),
		Amount:                 amount,
		Converted:              converted,
		Display:                money.Format(converted, r.To),
	}
}

// BaseCurrencyResponse represents the active base currency.
type BaseCurrencyResponse struct {
	Currency  string   `json:"currency"`
	Supported []string `json:"supported"`
}

// CurrencySummaryResponse aggregates one currency.
type CurrencySummaryResponse struct {
	BaseTotal map[string]decimal.Decimal `json:"base_total"`
	Currency  string                     `json:"currency"`
	Credits   decimal.Decimal            `json:"credits"`
	Debits    decimal.Decimal            `json:"debits"`
	Net       decimal.Decimal            `json:"net"`
	Count     int                        `json:"count"`
}

// SummaryResponse represents a ledger summary.
type SummaryResponse struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Balances    []BalanceResponse         `json:"balances"`
	Currencies  []CurrencySummaryResponse `json:"currencies"`
}

// SummaryFromUseCase converts a summary to response.
func SummaryFromUseCase(s *usecase.SummaryResult) *SummaryResponse {
	resp := &SummaryResponse{
		GeneratedAt: s.GeneratedAt,
		Balances:    BalancesFromDomain(s.Balances, "", decimal.Zero).Balances,
		Currencies:  make([]CurrencySummaryResponse, len(s.Currencies)),
	}
	for i, c := range s.Currencies {
		resp.Currencies[i] = CurrencySummaryResponse{
			Currency:  c.Currency,
			Credits:   c.Credits,
			Debits:    c.Debits,
			Net:       c.Net,
			BaseTotal: c.BaseTotal,
			Count:     c.Count,
		}
	}
	return resp
}

// ConsistencyResponse represents the result of a log check.
type ConsistencyResponse struct {
	Inconsistent []string `json:"inconsistent"`
	OutOfOrder   []string `json:"out_of_order"`
	Checked      int      `json:"checked"`
	Consistent   bool     `json:"consistent"`
}

// ConsistencyFromDomain converts a consistency report to response.
func ConsistencyFromDomain(r *domain.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Inconsistent: []string{},
		OutOfOrder:   []string{},
		Checked:      r.Checked,
		Consistent:   r.Consistent(),
	}
	resp.Inconsistent = append(resp.Inconsistent, r.Inconsistent...)
	resp.OutOfOrder = append(resp.OutOfOrder, r.OutOfOrder...)
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
