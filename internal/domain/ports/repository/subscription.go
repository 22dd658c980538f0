package repository

import (
	"context"

	"qrdine-billing/internal/domain/model"
)

type SubscriptionRepository interface {
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// Upsert overwrites the current snapshot for sub.UserID.
	Upsert(ctx context.Context, tx Tx, sub *model.Subscription) error
	// AppendHistory adds one ledger line; existing lines are never touched.
	AppendHistory(ctx context.Context, tx Tx, entry *model.HistoryEntry) error
	ListHistory(ctx context.Context, tx Tx, userID string, limit int) ([]*model.HistoryEntry, error)
}
