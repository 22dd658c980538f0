package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/ports/repository"
)

var _ repository.BillingConfigRepository = (*billingConfigRepo)(nil)

// billingConfigRepo reads the single-row billing_config table. When the row
// is absent it falls back to the configured default setup fee instead of
// failing checkout.
type billingConfigRepo struct {
	pool             *pgxpool.Pool
	fallbackSetupFee float64
}

func NewBillingConfigRepo(pool *pgxpool.Pool, fallbackSetupFee float64) *billingConfigRepo {
	return &billingConfigRepo{pool: pool, fallbackSetupFee: fallbackSetupFee}
}

func (r *billingConfigRepo) Get(ctx context.Context, tx repository.Tx) (*repository.BillingConfig, error) {
	const q = `SELECT setup_fee FROM billing_config WHERE id=1;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}

	cfg := &repository.BillingConfig{}
	if err := row.Scan(&cfg.SetupFee); err != nil {
		if err == pgx.ErrNoRows {
			return &repository.BillingConfig{SetupFee: r.fallbackSetupFee}, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return cfg, nil
}
