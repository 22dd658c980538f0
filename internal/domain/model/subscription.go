package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

// Subscription is the current entitlement snapshot for a user. Each
// successful reconciliation overwrites it; HistoryEntry keeps the trail.
type Subscription struct {
	UserID        string
	Status        SubscriptionStatus
	PlanID        string
	PlanName      string
	StartedAt     time.Time
	ExpiresAt     time.Time
	PaidAmount    float64
	LastPaymentID string
}

// HistoryEntry is one line of the append-only activation/renewal ledger.
type HistoryEntry struct {
	ID             string // ULID, lexically sortable by creation time
	UserID         string
	PlanID         string
	PlanName       string
	StartedAt      time.Time
	ExpiresAt      time.Time
	PaidAmount     float64
	CouponCode     string
	PaymentID      string
	DurationMonths int
}

// AddMonths advances t by n calendar months, clamping to the last day of the
// target month when the source day overflows (Jan 31 + 1 month = Feb 28/29).
// time.Date's own normalization would roll the overflow into the next month,
// which is not what a billing period means.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
