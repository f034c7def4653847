package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/domain"
)

// SettingsUseCase holds the active base currency. The value is kept in memory
// so that entry creation never touches storage.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
	currencies   domain.CurrencySet
	fallback     string
	metrics      LedgerMetrics
	logger       zerolog.Logger

	mu   sync.RWMutex
	base string
}

// NewSettingsUseCase creates a new SettingsUseCase. fallback is the base
// currency used until Load runs and whenever the stored one is unusable.
func NewSettingsUseCase(
	settingsRepo SettingsRepository,
	currencies domain.CurrencySet,
	fallback string,
	metrics LedgerMetrics,
	logger zerolog.Logger,
) *SettingsUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	fallback = domain.NormalizeCurrency(fallback)
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		currencies:   currencies,
		fallback:     fallback,
		metrics:      metrics,
		logger:       logger,
		base:         fallback,
	}
}

// Load reads the stored base currency. An unset or unsupported value is
// replaced by the fallback and written back.
func (uc *SettingsUseCase) Load(ctx context.Context) error {
	value, found, err := uc.settingsRepo.Get(ctx, baseCurrencyKey)
	if err != nil {
		return err
	}

	base := domain.NormalizeCurrency(value)
	if !found || !uc.currencies.Supports(base) {
		if found {
			uc.metrics.StateRepaired(recordBaseCurrency)
			uc.logger.Warn().
				Str("stored", value).
				Str("fallback", uc.fallback).
				Err(domain.ErrMalformedPersistedState).
				Msg("stored base currency is not supported")
		}
		base = uc.fallback
		if err := uc.settingsRepo.Set(ctx, baseCurrencyKey, base); err != nil {
			uc.logger.Error().Err(err).Msg("failed to persist base currency")
		}
	}

	uc.mu.Lock()
	uc.base = base
	uc.mu.Unlock()

	return nil
}

// BaseCurrency returns the active base currency.
func (uc *SettingsUseCase) BaseCurrency() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.base
}

// SetBaseCurrency changes the active base currency. Entries created before the
// change keep their snapshot.
func (uc *SettingsUseCase) SetBaseCurrency(ctx context.Context, code string) error {
	code = domain.NormalizeCurrency(code)
	if !uc.currencies.Supports(code) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, code)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.settingsRepo.Set(ctx, baseCurrencyKey, code); err != nil {
		return err
	}
	uc.base = code

	uc.logger.Info().Str("base_currency", code).Msg("base currency changed")
	return nil
}
