package repository

import (
	"context"

	"qrdine-billing/internal/domain/model"
)

type PaymentRepository interface {
	// FindByID locks the row FOR UPDATE when called inside a transaction so
	// that two reconciliations racing on the same payment id serialize.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	Create(ctx context.Context, tx Tx, p *model.Payment) error
	SumByPeriod(ctx context.Context, tx Tx, period string) (float64, error)
}
