package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// CreateEntryRequest represents a request to create and apply a generic entry.
// Amount is signed: positive credits, negative debits.
type CreateEntryRequest struct {
	Metadata any    `json:"metadata,omitempty"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() (usecase.CreateEntryInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.CreateEntryInput{}, err
	}

	if err := domain.ValidateTitle(r.Title); err != nil {
		return usecase.CreateEntryInput{}, err
	}

	if err := domain.ValidateMetadata(domain.NormalizeMetadata(r.Metadata)); err != nil {
		return usecase.CreateEntryInput{}, err
	}

	return usecase.CreateEntryInput{
		Type:     domain.EntryType(r.Type),
		Title:    r.Title,
		Icon:     r.Icon,
		Currency: r.Currency,
		Amount:   amount,
		Metadata: r.Metadata,
	}, nil
}

// AddMoneyRequest represents a funding of a wallet.
type AddMoneyRequest struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Source   string `json:"source,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddMoneyRequest) ToUseCaseInput() (usecase.AddMoneyInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.AddMoneyInput{}, err
	}

	return usecase.AddMoneyInput{Currency: r.Currency, Amount: amount, Source: r.Source}, nil
}

// WithdrawRequest represents a withdrawal to an external destination.
type WithdrawRequest struct {
	Destination map[string]any `json:"destination,omitempty"`
	Currency    string         `json:"currency"`
	Amount      string         `json:"amount"`
	Reason      string         `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput() (usecase.WithdrawInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.WithdrawInput{}, err
	}

	if err := domain.ValidateMetadata(r.Destination); err != nil {
		return usecase.WithdrawInput{}, err
	}

	return usecase.WithdrawInput{
		Destination: r.Destination,
		Currency:    r.Currency,
		Amount:      amount,
		Reason:      r.Reason,
	}, nil
}

// SendRequest represents a transfer to a recipient.
type SendRequest struct {
	Recipient map[string]any `json:"recipient,omitempty"`
	Currency  string         `json:"currency"`
	Amount    string         `json:"amount"`
	Note      string         `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SendRequest) ToUseCaseInput() (usecase.SendInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.SendInput{}, err
	}

	if err := domain.ValidateMetadata(r.Recipient); err != nil {
		return usecase.SendInput{}, err
	}

	return usecase.SendInput{
		Recipient: r.Recipient,
		Currency:  r.Currency,
		Amount:    amount,
		Note:      r.Note,
	}, nil
}

// ScanPayRequest represents a payment to a merchant code.
type ScanPayRequest struct {
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Merchant  string `json:"merchant,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ScanPayRequest) ToUseCaseInput() (usecase.ScanPayInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.ScanPayInput{}, err
	}

	return usecase.ScanPayInput{
		Currency:  r.Currency,
		Amount:    amount,
		Merchant:  r.Merchant,
		Reference: r.Reference,
	}, nil
}

// ExchangeRequest represents a conversion between two wallets.
type ExchangeRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ExchangeRequest) ToUseCaseInput() (usecase.ExchangeInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.ExchangeInput{}, err
	}

	return usecase.ExchangeInput{From: r.From, To: r.To, Amount: amount}, nil
}

// SetBalancesRequest replaces the stored balances. A missing balances object
// leaves them untouched.
type SetBalancesRequest struct {
	Balances map[string]string `json:"balances"`
}

// ToDomain converts the textual amounts.
func (r *SetBalancesRequest) ToDomain() (domain.Balances, error) {
	if r.Balances == nil {
		return nil, nil
	}

	out := make(domain.Balances, len(r.Balances))
	for currency, value := range r.Balances {
		amount, err := domain.ParseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", currency, err)
		}
		out[currency] = amount
	}
	return out, nil
}

// ReplaceRatesRequest carries a full rate table, {"USD": {"NGN": "1650"}}.
type ReplaceRatesRequest struct {
	Rates map[string]map[string]string `json:"rates"`
}

// ToDomain converts the textual multipliers. Positivity is checked by the
// rate use case.
func (r *ReplaceRatesRequest) ToDomain() (map[string]map[string]decimal.Decimal, error) {
	out := make(map[string]map[string]decimal.Decimal, len(r.Rates))
	for from, row := range r.Rates {
		converted := make(map[string]decimal.Decimal, len(row))
		for to, value := range row {
			rate, err := parseRate(value)
			if err != nil {
				return nil, fmt.Errorf("%s→%s: %w", from, to, err)
			}
			converted[to] = rate
		}
		out[from] = converted
	}
	return out, nil
}

// SetRateRequest sets one pair.
type SetRateRequest struct {
	Rate string `json:"rate"`
}

// ToDomain converts the textual multiplier.
func (r *SetRateRequest) ToDomain() (decimal.Decimal, error) {
	return parseRate(r.Rate)
}

// SetBaseCurrencyRequest changes the active base currency.
type SetBaseCurrencyRequest struct {
	Currency string `json:"currency"`
}

func parseRate(value string) (decimal.Decimal, error) {
	rate, err := domain.ParseAmount(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidRate, value)
	}
	return rate, nil
}
