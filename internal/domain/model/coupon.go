package model

import "time"

type CouponType string

const (
	CouponTypePercent CouponType = "percent"
	CouponTypeFlat    CouponType = "flat"
)

// Coupon is read-only reference data for the billing core. The eligibility
// rule lives in Usable; usage-count increments are owned elsewhere.
type Coupon struct {
	Code            string
	Type            CouponType
	Value           float64
	IsActive        bool
	StartDate       time.Time
	EndDate         time.Time
	UsedCount       int
	MaxUsage        int
	ApplicablePlans []string // empty = all plans
}

// Usable reports whether the coupon can be redeemed for planID at the given
// instant, plus a user-facing reason when it cannot.
func (c *Coupon) Usable(planID string, now time.Time) (bool, string) {
	if c == nil {
		return false, "Invalid coupon code."
	}
	if !c.IsActive {
		return false, "This coupon is no longer active."
	}
	if now.Before(c.StartDate) {
		return false, "This coupon is not valid yet."
	}
	if now.After(c.EndDate) {
		return false, "This coupon has expired."
	}
	if c.UsedCount >= c.MaxUsage {
		return false, "This coupon has reached its usage limit."
	}
	if len(c.ApplicablePlans) > 0 && planID != "" {
		found := false
		for _, p := range c.ApplicablePlans {
			if p == planID {
				found = true
				break
			}
		}
		if !found {
			return false, "This coupon is not applicable to the selected plan."
		}
	}
	return true, ""
}
