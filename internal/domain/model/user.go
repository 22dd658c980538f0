package model

import (
	"time"

	"qrdine-billing/internal/domain"

	"github.com/google/uuid"
)

// User is a restaurant operator account. Only SetupFeePaid is owned by the
// billing core; the rest belongs to the onboarding subsystem.
type User struct {
	ID           string
	Email        string
	RestaurantID string
	SetupFeePaid bool
	RegisteredAt time.Time
}

func NewUser(id, email, restaurantID string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Email:        email,
		RestaurantID: restaurantID,
		RegisteredAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
