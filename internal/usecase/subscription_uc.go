package usecase

import (
	"context"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

// SubscriptionUseCase exposes read access to the entitlement snapshot and
// its ledger. All writes go through ReconcileUseCase.
type SubscriptionUseCase interface {
	Current(ctx context.Context, userID string) (*model.Subscription, error)
	History(ctx context.Context, userID string, limit int) ([]*model.HistoryEntry, error)
}

var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type subscriptionUC struct {
	subs repository.SubscriptionRepository
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository) *subscriptionUC {
	return &subscriptionUC{subs: subs}
}

func (u *subscriptionUC) Current(ctx context.Context, userID string) (*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return u.subs.FindByUser(ctx, repository.NoTX, userID)
}

func (u *subscriptionUC) History(ctx context.Context, userID string, limit int) ([]*model.HistoryEntry, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = 50
	}
	return u.subs.ListHistory(ctx, repository.NoTX, userID, limit)
}
