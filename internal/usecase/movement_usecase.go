package usecase

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// Icons attached to typed movements for the presentation layer.
const (
	IconAddMoney = "plus"
	IconWithdraw = "arrow-up"
	IconSend     = "send"
	IconScanPay  = "qr"
	IconExchange = "swap"
)

// EntryFactory builds entries.
type EntryFactory interface {
	CreateEntry(input CreateEntryInput) *domain.Entry
}

// EntryApplier applies entries to the ledger. ApplyFunded refuses to take any
// balance below zero.
type EntryApplier interface {
	ApplyEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error)
	ApplyEntries(ctx context.Context, entries ...*domain.Entry) ([]*domain.Entry, error)
	ApplyFunded(ctx context.Context, entries ...*domain.Entry) ([]*domain.Entry, error)
}

// BalanceReader reads current balances.
type BalanceReader interface {
	GetBalances(ctx context.Context) (domain.Balances, error)
}

// MovementUseCase turns wallet actions into entries. It is the caller the
// ledger leaves sufficiency checks to: debits above the current balance are
// refused up front, and applied through ApplyFunded so that the check is
// repeated under the ledger lock.
type MovementUseCase struct {
	factory  EntryFactory
	ledger   EntryApplier
	balances BalanceReader
	rates    RateResolver
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(factory EntryFactory, ledger EntryApplier, balances BalanceReader, rates RateResolver) *MovementUseCase {
	return &MovementUseCase{
		factory:  factory,
		ledger:   ledger,
		balances: balances,
		rates:    rates,
	}
}

// AddMoneyInput represents a funding of a wallet.
type AddMoneyInput struct {
	Currency string
	Source   string
	Amount   decimal.Decimal
}

// WithdrawInput represents a withdrawal to an external destination.
type WithdrawInput struct {
	Destination map[string]any
	Currency    string
	Reason      string
	Amount      decimal.Decimal
}

// SendInput represents a transfer to a resolved recipient.
type SendInput struct {
	Recipient map[string]any // opaque descriptor from the recipient resolver
	Currency  string
	Note      string
	Amount    decimal.Decimal
}

// ScanPayInput represents a payment to a merchant code.
type ScanPayInput struct {
	Currency  string
	Merchant  string
	Reference string
	Amount    decimal.Decimal
}

// ExchangeInput represents a conversion between two wallets.
type ExchangeInput struct {
	From   string
	To     string
	Amount decimal.Decimal // in From units
}

// AddMoney credits a wallet.
func (uc *MovementUseCase) AddMoney(ctx context.Context, input AddMoneyInput) (*domain.Entry, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if input.Source != "" {
		meta["source"] = input.Source
	}

	entry := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeAddMoney,
		Title:    fmt.Sprintf("Added %s", domain.NormalizeCurrency(input.Currency)),
		Currency: input.Currency,
		Amount:   input.Amount,
		Metadata: meta,
		Icon:     IconAddMoney,
	})

	return uc.ledger.ApplyEntry(ctx, entry)
}

// Withdraw debits a wallet towards an external destination.
func (uc *MovementUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Entry, error) {
	if err := uc.checkDebit(ctx, input.Currency, input.Amount); err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if input.Destination != nil {
		meta["destination"] = input.Destination
	}
	if input.Reason != "" {
		meta["reason"] = input.Reason
	}

	entry := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeWithdrawal,
		Title:    fmt.Sprintf("Withdrew %s", domain.NormalizeCurrency(input.Currency)),
		Currency: input.Currency,
		Amount:   input.Amount.Neg(),
		Metadata: meta,
		Icon:     IconWithdraw,
	})

	return uc.applyDebit(ctx, entry)
}

// Send debits a wallet towards a recipient.
func (uc *MovementUseCase) Send(ctx context.Context, input SendInput) (*domain.Entry, error) {
	if err := uc.checkDebit(ctx, input.Currency, input.Amount); err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if input.Recipient != nil {
		meta["recipient"] = input.Recipient
	}
	if input.Note != "" {
		meta["note"] = input.Note
	}

	title := "Sent money"
	if name, ok := input.Recipient["name"].(string); ok && strings.TrimSpace(name) != "" {
		title = "Sent to " + strings.TrimSpace(name)
	}

	entry := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeTransfer,
		Title:    title,
		Currency: input.Currency,
		Amount:   input.Amount.Neg(),
		Metadata: meta,
		Icon:     IconSend,
	})

	return uc.applyDebit(ctx, entry)
}

// ScanPay debits a wallet towards a merchant.
func (uc *MovementUseCase) ScanPay(ctx context.Context, input ScanPayInput) (*domain.Entry, error) {
	if err := uc.checkDebit(ctx, input.Currency, input.Amount); err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if input.Merchant != "" {
		meta["merchant"] = input.Merchant
	}
	if input.Reference != "" {
		meta["reference"] = input.Reference
	}

	title := "Scan to pay"
	if input.Merchant != "" {
		title = "Paid " + input.Merchant
	}

	entry := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeScanPay,
		Title:    title,
		Currency: input.Currency,
		Amount:   input.Amount.Neg(),
		Metadata: meta,
		Icon:     IconScanPay,
	})

	return uc.applyDebit(ctx, entry)
}

// Exchange moves value between two wallets at the current rate. The debit and
// the credit are applied atomically and are returned in that order.
func (uc *MovementUseCase) Exchange(ctx context.Context, input ExchangeInput) ([]*domain.Entry, error) {
	from, to := domain.NormalizeCurrency(input.From), domain.NormalizeCurrency(input.To)
	if from == to {
		return nil, fmt.Errorf("%w: cannot exchange %s into itself", domain.ErrInvalidEntry, from)
	}

	if err := uc.checkDebit(ctx, from, input.Amount); err != nil {
		return nil, err
	}

	res := uc.rates.Resolve(from, to)
	credited := input.Amount.Mul(res.Rate)
	meta := map[string]any{
		"from":        from,
		"to":          to,
		"rate":        res.Rate.String(),
		"rate_source": string(res.Source),
	}

	debit := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeExchange,
		Title:    fmt.Sprintf("Exchanged %s to %s", from, to),
		Currency: from,
		Amount:   input.Amount.Neg(),
		Metadata: meta,
		Icon:     IconExchange,
	})
	credit := uc.factory.CreateEntry(CreateEntryInput{
		Type:     domain.EntryTypeExchange,
		Title:    fmt.Sprintf("Received %s from %s", to, from),
		Currency: to,
		Amount:   credited,
		Metadata: maps.Clone(meta),
		Icon:     IconExchange,
	})

	return uc.ledger.ApplyFunded(ctx, debit, credit)
}

func (uc *MovementUseCase) applyDebit(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	applied, err := uc.ledger.ApplyFunded(ctx, entry)
	if err != nil {
		return nil, err
	}
	return applied[0], nil
}

func (uc *MovementUseCase) checkDebit(ctx context.Context, currency string, amount decimal.Decimal) error {
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return err
	}

	balances, err := uc.balances.GetBalances(ctx)
	if err != nil {
		return err
	}

	currency = domain.NormalizeCurrency(currency)
	if available := balances.Get(currency); available.LessThan(amount) {
		return fmt.Errorf("%w: %s balance %s cannot cover %s", domain.ErrInsufficientFunds, currency, available, amount)
	}

	return nil
}
