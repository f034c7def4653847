package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// EntryUseCase is the entry factory. It builds fully populated entries and
// never touches balances or the transaction log.
type EntryUseCase struct {
	rates    RateResolver
	settings BaseCurrencyProvider
	idGen    IDGenerator
	now      func() time.Time
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(rates RateResolver, settings BaseCurrencyProvider, idGen IDGenerator) *EntryUseCase {
	return &EntryUseCase{
		rates:    rates,
		settings: settings,
		idGen:    idGen,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func (uc *EntryUseCase) WithClock(now func() time.Time) *EntryUseCase {
	uc.now = now
	return uc
}

// CreateEntryInput represents a requested movement.
type CreateEntryInput struct {
	Metadata any
	Type     domain.EntryType
	Title    string
	Currency string
	Icon     string
	Amount   decimal.Decimal
}

// CreateEntry builds an entry for input, snapshotting the active base
// currency and the rate from the entry's currency into it.
func (uc *EntryUseCase) CreateEntry(input CreateEntryInput) *domain.Entry {
	currency := domain.NormalizeCurrency(input.Currency)
	base := uc.settings.BaseCurrency()

	entryType := input.Type
	if entryType == "" {
		entryType = domain.EntryTypeGeneric
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = entryType.Title()
	}

	res := uc.rates.Resolve(currency, base)

	return &domain.Entry{
		ID:           uc.idGen.Generate(),
		Type:         entryType,
		Title:        title,
		Icon:         input.Icon,
		Currency:     currency,
		Amount:       input.Amount,
		BaseCurrency: base,
		FXRateUsed:   res.Rate,
		BaseEquiv:    input.Amount.Abs().Mul(res.Rate),
		Metadata:     domain.NormalizeMetadata(input.Metadata),
		CreatedAt:    uc.now(),
	}
}
