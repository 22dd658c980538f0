package repository

import (
	"context"

	"qrdine-billing/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	Save(ctx context.Context, tx Tx, user *model.User) error
	// MarkSetupFeePaid sets the one-shot setup-fee flag. Setting it when it
	// is already true is a harmless no-op.
	MarkSetupFeePaid(ctx context.Context, tx Tx, userID string) error
}
