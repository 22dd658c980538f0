package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

// FindByID reads the payment row keyed by the gateway payment id. Inside a
// transaction the read locks the row so a racing reconciliation blocks here
// until the winner commits, then observes the insert.
func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `
SELECT id, user_id, order_id, amount, currency, is_setup_fee, coupon_used, plan_id, created_at, processed_by
  FROM payments WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}

	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.OrderID, &p.Amount, &p.Currency, &p.IsSetupFee, &p.CouponUsed, &p.PlanID, &p.CreatedAt, &p.ProcessedBy); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

// Create inserts the payment record. Plain INSERT, no upsert: the primary
// key on the gateway payment id is the idempotency backstop, and a conflict
// here means the dedup read was somehow bypassed.
func (r *paymentRepo) Create(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, user_id, order_id, amount, currency, is_setup_fee, coupon_used, plan_id, created_at, processed_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.OrderID, p.Amount, p.Currency, p.IsSetupFee, p.CouponUsed, p.PlanID, p.CreatedAt, p.ProcessedBy)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE created_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}

	var sum float64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
