package model

import (
	"time"

	"qrdine-billing/internal/domain"
)

// Plan is a purchasable subscription plan with a calendar-month duration.
// Immutable reference data from the billing core's perspective.
type Plan struct {
	ID             string
	Name           string
	DurationMonths int
	PriceINR       float64
	CreatedAt      time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, durationMonths int, priceINR float64) (*Plan, error) {
	if id == "" || name == "" || durationMonths <= 0 || priceINR <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:             id,
		Name:           name,
		DurationMonths: durationMonths,
		PriceINR:       priceINR,
		CreatedAt:      time.Now(),
	}, nil
}
