package usecase

import (
	"math"

	"qrdine-billing/internal/domain/model"
)

// Quote is the result of pricing one checkout attempt.
type Quote struct {
	BaseAmount    float64
	Discount      float64
	SetupFee      float64
	NeedsSetupFee bool
	Total         float64
	TotalPaise    int64
}

// ComputeQuote prices a checkout: base price, coupon discount, and the
// one-time setup fee when the user has not paid it yet. Pure function -
// coupon eligibility is decided by the caller, a nil coupon means no
// discount.
//
// Rounding is half-up and happens at two points only: the percent discount
// is rounded before subtraction, and the paise total is rounded once at the
// end. The total never goes below zero.
func ComputeQuote(baseAmount float64, coupon *model.Coupon, setupFeePaid bool, setupFee float64) Quote {
	var discount float64
	if coupon != nil {
		switch coupon.Type {
		case model.CouponTypePercent:
			discount = roundHalfUp(baseAmount * coupon.Value / 100)
		case model.CouponTypeFlat:
			discount = coupon.Value
		}
	}

	needsSetupFee := !setupFeePaid
	fee := 0.0
	if needsSetupFee {
		fee = setupFee
	}

	total := baseAmount - discount + fee
	if total < 0 {
		total = 0
	}

	return Quote{
		BaseAmount:    baseAmount,
		Discount:      discount,
		SetupFee:      fee,
		NeedsSetupFee: needsSetupFee,
		Total:         total,
		TotalPaise:    int64(roundHalfUp(total * 100)),
	}
}

func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
