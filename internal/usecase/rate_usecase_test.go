package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fxwallet/internal/adapter/repository/memory"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
	"github.com/iho/fxwallet/internal/usecase/mocks"
)

func TestRateUseCase_LoadSeedsEmptyStorage(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRateRepository(memory.NewStore())
	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())

	if err := uc.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := repo.Load(ctx)
	if err != nil || stored == nil {
		t.Fatalf("expected seed to be persisted, got %v %v", stored, err)
	}
	table, clean := domain.DecodeRates(stored)
	if !clean || !table.Rate("USD", "NGN").Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("unexpected persisted table %+v", table)
	}
	if got := uc.Rate("USD", "NGN"); !got.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("expected 1650, got %s", got)
	}
}

func TestRateUseCase_LoadRepairsStoredTable(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		payload     string
		wantVersion int
		wantRates   map[[2]string]string
	}{
		{
			name:        "clean table is used as is",
			payload:     `{"USD":{"NGN":"1700"},"EUR":{"NGN":1800}}`,
			wantVersion: 4,
			wantRates:   map[[2]string]string{{"USD", "NGN"}: "1700", {"EUR", "NGN"}: "1800"},
		},
		{
			name:        "bad pairs are dropped",
			payload:     `{"USD":{"NGN":"1700","EUR":"-1","GBP":"abc"},"EUR":7}`,
			wantVersion: 4,
			wantRates:   map[[2]string]string{{"USD", "NGN"}: "1700", {"EUR", "NGN"}: "1"},
		},
		{
			name:        "unreadable payload falls back to seed",
			payload:     `not json`,
			wantVersion: 1,
			wantRates:   map[[2]string]string{{"USD", "NGN"}: "1650"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := memory.NewRateRepository(memory.NewStore())
			metrics := mocks.NewMockLedgerMetrics(ctrl)
			metrics.EXPECT().StateRepaired("rates").AnyTimes()
			metrics.EXPECT().RateResolved(gomock.Any()).AnyTimes()

			if err := repo.Save(ctx, &domain.PersistedRates{Version: 4, UpdatedAt: updated, Payload: []byte(tt.payload)}); err != nil {
				t.Fatalf("save: %v", err)
			}

			uc := usecase.NewRateUseCase(repo, seedRates(), metrics, zerolog.Nop())
			if err := uc.Load(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			table := uc.Table()
			if table.Version != tt.wantVersion {
				t.Fatalf("expected version %d, got %d", tt.wantVersion, table.Version)
			}
			for pair, want := range tt.wantRates {
				if got := table.Rate(pair[0], pair[1]); !got.Equal(dec(want)) {
					t.Fatalf("%s→%s: expected %s, got %s", pair[0], pair[1], want, got)
				}
			}

			// whatever was loaded is now stored cleanly
			stored, _ := repo.Load(ctx)
			if _, clean := domain.DecodeRates(stored); !clean {
				t.Fatalf("expected the repaired table to be written back")
			}
		})
	}
}

func TestRateUseCase_LoadSurvivesSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Load(gomock.Any()).Return(nil, nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("read-only"))

	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())
	if err := uc.Load(context.Background()); err != nil {
		t.Fatalf("save failures must only be logged, got %v", err)
	}
	if got := uc.Rate("USD", "NGN"); !got.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("expected seed rate, got %s", got)
	}
}

func TestRateUseCase_LoadReturnsReadErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRateRepository(ctrl)
	readErr := errors.New("timeout")
	repo.EXPECT().Load(gomock.Any()).Return(nil, readErr)

	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())
	if err := uc.Load(context.Background()); !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestRateUseCase_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockLedgerMetrics(ctrl)
	uc := usecase.NewRateUseCase(memory.NewRateRepository(memory.NewStore()), seedRates(), metrics, zerolog.Nop())

	gomock.InOrder(
		metrics.EXPECT().RateResolved(domain.RateExact),
		metrics.EXPECT().RateResolved(domain.RateInverted),
		metrics.EXPECT().RateResolved(domain.RateIdentity),
		metrics.EXPECT().RateResolved(domain.RateDefaulted),
	)

	if res := uc.Resolve("USD", "NGN"); res.Source != domain.RateExact {
		t.Fatalf("expected exact, got %s", res.Source)
	}
	if res := uc.Resolve("NGN", "USD"); res.Source != domain.RateInverted {
		t.Fatalf("expected inverted, got %s", res.Source)
	}
	if res := uc.Resolve("eur", "EUR"); res.Source != domain.RateIdentity {
		t.Fatalf("expected identity, got %s", res.Source)
	}
	res := uc.Resolve("EUR", "GBP")
	if res.Source != domain.RateDefaulted || !res.Rate.Equal(decimal.NewFromInt(1)) || !res.Approximate() {
		t.Fatalf("expected defaulted 1:1, got %+v", res)
	}
}

func TestRateUseCase_Convert(t *testing.T) {
	uc := usecase.NewRateUseCase(memory.NewRateRepository(memory.NewStore()), seedRates(), nil, zerolog.Nop())

	if got := uc.Convert("USD", "NGN", decimal.NewFromInt(2)); !got.Equal(decimal.NewFromInt(3300)) {
		t.Fatalf("expected 3300, got %s", got)
	}
	if got := uc.Convert("NGN", "USD", decimal.NewFromInt(3300)).Round(8); !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2, got %s", got)
	}
}

func TestRateUseCase_ReplaceRates(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRateRepository(memory.NewStore())
	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())

	_, err := uc.ReplaceRates(ctx, map[string]map[string]decimal.Decimal{
		"USD": {"NGN": decimal.NewFromInt(1700), "EUR": decimal.Zero},
	})
	if !errors.Is(err, domain.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if got := uc.Rate("USD", "NGN"); !got.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("rejected replace must not change the table, got %s", got)
	}

	table, err := uc.ReplaceRates(ctx, map[string]map[string]decimal.Decimal{
		"usd": {"eur": dec("0.9")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Version != 2 {
		t.Fatalf("expected version 2, got %d", table.Version)
	}
	if res := uc.Resolve("USD", "NGN"); res.Source != domain.RateDefaulted {
		t.Fatalf("replace must drop old pairs, got %s", res.Source)
	}
	if got := uc.Rate("USD", "EUR"); !got.Equal(dec("0.9")) {
		t.Fatalf("expected 0.9, got %s", got)
	}

	stored, _ := repo.Load(ctx)
	if stored == nil || stored.Version != 2 {
		t.Fatalf("expected version 2 to be persisted, got %+v", stored)
	}
}

func TestRateUseCase_SetRate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRateRepository(memory.NewStore())
	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())

	if _, err := uc.SetRate(ctx, "EUR", "NGN", decimal.NewFromInt(-1)); !errors.Is(err, domain.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}

	table, err := uc.SetRate(ctx, "EUR", "NGN", decimal.NewFromInt(1790))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Version != 2 || len(table.Pairs()) != 2 {
		t.Fatalf("expected version 2 with two pairs, got %+v", table)
	}
	if got := uc.Rate("USD", "NGN"); !got.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("other pairs must be kept, got %s", got)
	}

	// the returned table is a copy
	table.Rates["EUR"]["NGN"] = decimal.NewFromInt(1)
	if got := uc.Rate("EUR", "NGN"); !got.Equal(decimal.NewFromInt(1790)) {
		t.Fatalf("expected 1790, got %s", got)
	}
}

func TestRateUseCase_StoreFailureKeepsTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	uc := usecase.NewRateUseCase(repo, seedRates(), nil, zerolog.Nop())
	if _, err := uc.SetRate(context.Background(), "USD", "NGN", decimal.NewFromInt(2000)); err == nil {
		t.Fatalf("expected save error")
	}
	if got := uc.Rate("USD", "NGN"); !got.Equal(decimal.NewFromInt(1650)) {
		t.Fatalf("expected table unchanged, got %s", got)
	}
}
