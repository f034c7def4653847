package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/postgres/generated"
	"github.com/iho/fxwallet/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository. Each currency is
// one row of the balances table.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepository(pool)
}

func newBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// Load reads every row. Amounts are read as text so that a NaN stored in the
// NUMERIC column surfaces as a repairable value.
func (r *BalanceRepository) Load(ctx context.Context) (map[string]string, error) {
	rows, err := r.queries.ListBalances(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Currency] = row.Amount
	}

	return out, nil
}

// Replace deletes every row and writes balances.
func (r *BalanceRepository) Replace(ctx context.Context, tx usecase.Transaction, balances domain.Balances) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	queries := r.queries.WithTx(ptx.PgxTx())

	if err := queries.DeleteBalances(ctx); err != nil {
		return err
	}

	for _, currency := range balances.Currencies() {
		if err := queries.UpsertBalance(ctx, generated.UpsertBalanceParams{
			Currency: currency,
			Amount:   decimalToNumeric(balances[currency]),
		}); err != nil {
			return err
		}
	}

	return nil
}

// Upsert writes one currency.
func (r *BalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, currency string, amount decimal.Decimal) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx.PgxTx()).UpsertBalance(ctx, generated.UpsertBalanceParams{
		Currency: currency,
		Amount:   decimalToNumeric(amount),
	})
}
