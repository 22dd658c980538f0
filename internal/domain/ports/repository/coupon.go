package repository

import (
	"context"

	"qrdine-billing/internal/domain/model"
)

// CouponRepository is read-only from the billing core's perspective; coupon
// CRUD belongs to the dashboard subsystem.
type CouponRepository interface {
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	Save(ctx context.Context, tx Tx, coupon *model.Coupon) error
}
