package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// CouponCheck is the answer to "can this code be redeemed for this plan".
// Message carries the user-facing rejection reason so callers never have to
// re-derive the eligibility rule.
type CouponCheck struct {
	Valid   bool
	Message string
	Coupon  *model.Coupon
}

type CouponUseCase interface {
	Validate(ctx context.Context, code, planID string) (*CouponCheck, error)
}

var _ CouponUseCase = (*couponUC)(nil)

type couponUC struct {
	coupons repository.CouponRepository
	now     func() time.Time
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, logger *zerolog.Logger) *couponUC {
	return &couponUC{coupons: coupons, now: time.Now, log: logger}
}

// Validate checks eligibility without mutating anything. An unknown code is
// a negative answer, not an error; storage faults are errors.
func (u *couponUC) Validate(ctx context.Context, code, planID string) (*CouponCheck, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return &CouponCheck{Valid: false, Message: "Invalid coupon code."}, nil
	}

	coupon, err := u.coupons.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &CouponCheck{Valid: false, Message: "Invalid coupon code."}, nil
		}
		return nil, err
	}

	if ok, reason := coupon.Usable(planID, u.now()); !ok {
		return &CouponCheck{Valid: false, Message: reason}, nil
	}
	return &CouponCheck{Valid: true, Coupon: coupon}, nil
}
