package repository

import "context"

// BillingConfig holds operator-tunable billing knobs, read-only at runtime.
type BillingConfig struct {
	SetupFee float64
}

type BillingConfigRepository interface {
	Get(ctx context.Context, tx Tx) (*BillingConfig, error)
}
