package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `
SELECT user_id, status, plan_id, plan_name, started_at, expires_at, paid_amount, last_payment_id
  FROM subscriptions WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{}
	if err := row.Scan(&s.UserID, &s.Status, &s.PlanID, &s.PlanName, &s.StartedAt, &s.ExpiresAt, &s.PaidAmount, &s.LastPaymentID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (user_id, status, plan_id, plan_name, started_at, expires_at, paid_amount, last_payment_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  status=$2, plan_id=$3, plan_name=$4, started_at=$5, expires_at=$6, paid_amount=$7, last_payment_id=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, s.UserID, s.Status, s.PlanID, s.PlanName, s.StartedAt, s.ExpiresAt, s.PaidAmount, s.LastPaymentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) AppendHistory(ctx context.Context, tx repository.Tx, e *model.HistoryEntry) error {
	const q = `
INSERT INTO subscription_history (id, user_id, plan_id, plan_name, started_at, expires_at, paid_amount, coupon_code, payment_id, duration_months)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.PlanID, e.PlanName, e.StartedAt, e.ExpiresAt, e.PaidAmount, e.CouponCode, e.PaymentID, e.DurationMonths)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) ListHistory(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, user_id, plan_id, plan_name, started_at, expires_at, paid_amount, coupon_code, payment_id, duration_months
  FROM subscription_history WHERE user_id=$1 ORDER BY id DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.HistoryEntry
	for rows.Next() {
		e := new(model.HistoryEntry)
		if err := rows.Scan(&e.ID, &e.UserID, &e.PlanID, &e.PlanName, &e.StartedAt, &e.ExpiresAt, &e.PaidAmount, &e.CouponCode, &e.PaymentID, &e.DurationMonths); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
