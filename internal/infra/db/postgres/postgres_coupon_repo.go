package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `
SELECT code, type, value, is_active, start_date, end_date, used_count, max_usage, applicable_plans
  FROM coupons WHERE code=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	c := &model.Coupon{}
	if err := row.Scan(&c.Code, &c.Type, &c.Value, &c.IsActive, &c.StartDate, &c.EndDate, &c.UsedCount, &c.MaxUsage, &c.ApplicablePlans); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (code, type, value, is_active, start_date, end_date, used_count, max_usage, applicable_plans)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (code) DO UPDATE SET
  type=$2, value=$3, is_active=$4, start_date=$5, end_date=$6, used_count=$7, max_usage=$8, applicable_plans=$9;`
	_, err := execSQL(ctx, r.pool, tx, q, c.Code, c.Type, c.Value, c.IsActive, c.StartDate, c.EndDate, c.UsedCount, c.MaxUsage, c.ApplicablePlans)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
