package usecase

import (
	"context"
	"testing"
	"time"

	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

func TestCouponValidate(t *testing.T) {
	ctx := context.Background()
	repo := newMemCouponRepo()
	uc := NewCouponUseCase(repo, testLogger())

	_ = repo.Save(ctx, repository.NoTX, testCoupon("SAVE10", model.CouponTypePercent, 10))

	check, err := uc.Validate(ctx, "SAVE10", "pro-monthly")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !check.Valid || check.Coupon == nil {
		t.Fatalf("expected valid coupon, got %+v", check)
	}

	// Unknown code is a negative answer, not an error.
	check, err = uc.Validate(ctx, "NOPE", "pro-monthly")
	if err != nil {
		t.Fatalf("Validate unknown: %v", err)
	}
	if check.Valid || check.Message == "" {
		t.Fatalf("expected invalid with message, got %+v", check)
	}

	// Codes are normalized to upper case.
	check, err = uc.Validate(ctx, "save10", "pro-monthly")
	if err != nil || !check.Valid {
		t.Fatalf("expected case-insensitive match, got %+v err=%v", check, err)
	}
}

func TestCouponValidateRejections(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	cases := []struct {
		name   string
		coupon *model.Coupon
		planID string
	}{
		{
			name: "inactive",
			coupon: &model.Coupon{
				Code: "C1", Type: model.CouponTypeFlat, Value: 10,
				IsActive: false, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), MaxUsage: 10,
			},
		},
		{
			name: "not started",
			coupon: &model.Coupon{
				Code: "C2", Type: model.CouponTypeFlat, Value: 10,
				IsActive: true, StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour), MaxUsage: 10,
			},
		},
		{
			name: "expired",
			coupon: &model.Coupon{
				Code: "C3", Type: model.CouponTypeFlat, Value: 10,
				IsActive: true, StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour), MaxUsage: 10,
			},
		},
		{
			name: "usage cap reached",
			coupon: &model.Coupon{
				Code: "C4", Type: model.CouponTypeFlat, Value: 10,
				IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
				UsedCount: 10, MaxUsage: 10,
			},
		},
		{
			name: "wrong plan",
			coupon: &model.Coupon{
				Code: "C5", Type: model.CouponTypeFlat, Value: 10,
				IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), MaxUsage: 10,
				ApplicablePlans: []string{"pro-yearly"},
			},
			planID: "starter-monthly",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemCouponRepo()
			_ = repo.Save(ctx, repository.NoTX, tc.coupon)
			uc := NewCouponUseCase(repo, testLogger())

			check, err := uc.Validate(ctx, tc.coupon.Code, tc.planID)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if check.Valid {
				t.Fatalf("expected rejection, got valid")
			}
			if check.Message == "" {
				t.Fatalf("expected user-facing rejection reason")
			}
		})
	}
}

func TestCouponEmptyPlansMeansAllPlans(t *testing.T) {
	ctx := context.Background()
	repo := newMemCouponRepo()
	c := testCoupon("ANY", model.CouponTypeFlat, 25)
	c.ApplicablePlans = nil
	_ = repo.Save(ctx, repository.NoTX, c)

	uc := NewCouponUseCase(repo, testLogger())
	check, err := uc.Validate(ctx, "ANY", "whatever-plan")
	if err != nil || !check.Valid {
		t.Fatalf("expected valid for any plan, got %+v err=%v", check, err)
	}
}
