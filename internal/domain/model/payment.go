package model

import "time"

// ProcessedBy records which delivery path won the reconciliation race.
type ProcessedBy string

const (
	ProcessedByClient  ProcessedBy = "client"
	ProcessedByWebhook ProcessedBy = "webhook"
)

// Payment is the local record of a captured gateway payment. It is keyed by
// the gateway's payment id, which doubles as the global idempotency token:
// at most one row per payment id ever exists, and rows are immutable.
type Payment struct {
	ID          string // gateway payment id
	UserID      string
	OrderID     string // gateway order id
	Amount      float64
	Currency    string
	IsSetupFee  bool
	CouponUsed  string // empty if none
	PlanID      string
	CreatedAt   time.Time
	ProcessedBy ProcessedBy
}

// OrderNotes is the opaque intent blob attached to a gateway order at
// creation and returned unchanged with every later confirmation. It is the
// sole channel carrying "what was this order for" across the payment gap.
type OrderNotes struct {
	UserID             string `json:"userId"`
	PlanID             string `json:"planId"`
	IsSetupFeeExpected string `json:"isSetupFeeExpected"` // "true" | "false"
	CouponCode         string `json:"couponCode,omitempty"`
}

func (n OrderNotes) SetupFeeExpected() bool { return n.IsSetupFeeExpected == "true" }
