package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

// ReconcileEvent is a signature-verified payment confirmation. Both delivery
// paths (client callback and gateway webhook) funnel into the same event
// shape; the notes blob carries the original checkout intent.
type ReconcileEvent struct {
	PaymentID   string
	OrderID     string
	AmountPaise int64
	Currency    string
	Notes       model.OrderNotes
	ProcessedBy model.ProcessedBy
}

// ReconcileResult reports what the transaction did. Applied is false when the
// payment id had already been recorded (idempotent no-op, still a success).
type ReconcileResult struct {
	Applied      bool
	Payment      *model.Payment
	Subscription *model.Subscription
}

type ReconcileUseCase interface {
	Reconcile(ctx context.Context, ev ReconcileEvent) (*ReconcileResult, error)
}

var _ ReconcileUseCase = (*reconcileUC)(nil)

type reconcileUC struct {
	payments repository.PaymentRepository
	plans    repository.PlanRepository
	users    repository.UserRepository
	subs     repository.SubscriptionRepository
	tm       repository.TransactionManager
	now      func() time.Time
	log      *zerolog.Logger
}

func NewReconcileUseCase(
	payments repository.PaymentRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{
		payments: payments,
		plans:    plans,
		users:    users,
		subs:     subs,
		tm:       tm,
		now:      time.Now,
		log:      logger,
	}
}

// Reconcile applies one verified payment event exactly once.
//
// Everything runs inside a single transaction keyed on the gateway payment
// id. Two deliveries racing on the same id serialize on the payments row:
// the loser re-reads, finds the row, and commits an empty transaction. The
// payments primary key backstops the dedup even if the store's isolation is
// weaker than requested.
func (u *reconcileUC) Reconcile(ctx context.Context, ev ReconcileEvent) (*ReconcileResult, error) {
	if ev.PaymentID == "" || ev.Notes.UserID == "" || ev.Notes.PlanID == "" {
		return nil, domain.ErrInvalidArgument
	}

	res := &ReconcileResult{}
	txErr := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(ctx context.Context, tx repository.Tx) error {
		// 1. Dedup on payment id. Present means a previous delivery won.
		existing, err := u.payments.FindByID(ctx, tx, ev.PaymentID)
		if err == nil && existing != nil {
			res.Payment = existing
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		// 2. Resolve the plan named in the order notes. A missing plan is a
		// billing misconfiguration, never swallowed.
		plan, err := u.plans.FindByID(ctx, tx, ev.Notes.PlanID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrPlanNotFound
			}
			return err
		}

		now := u.now()
		payment := &model.Payment{
			ID:          ev.PaymentID,
			UserID:      ev.Notes.UserID,
			OrderID:     ev.OrderID,
			Amount:      float64(ev.AmountPaise) / 100,
			Currency:    ev.Currency,
			IsSetupFee:  ev.Notes.SetupFeeExpected(),
			CouponUsed:  ev.Notes.CouponCode,
			PlanID:      plan.ID,
			CreatedAt:   now,
			ProcessedBy: ev.ProcessedBy,
		}
		if err := u.payments.Create(ctx, tx, payment); err != nil {
			return err
		}

		// 4. One-shot setup-fee flag. Only written when the order expected
		// the fee and the flag is still unset.
		if ev.Notes.SetupFeeExpected() {
			user, err := u.users.FindByID(ctx, tx, ev.Notes.UserID)
			if err != nil {
				return err
			}
			if !user.SetupFeePaid {
				if err := u.users.MarkSetupFeePaid(ctx, tx, user.ID); err != nil {
					return err
				}
			}
		}

		startedAt := now
		expiresAt := model.AddMonths(now, plan.DurationMonths)

		entry := &model.HistoryEntry{
			ID:             ulid.Make().String(),
			UserID:         ev.Notes.UserID,
			PlanID:         plan.ID,
			PlanName:       plan.Name,
			StartedAt:      startedAt,
			ExpiresAt:      expiresAt,
			PaidAmount:     payment.Amount,
			CouponCode:     ev.Notes.CouponCode,
			PaymentID:      ev.PaymentID,
			DurationMonths: plan.DurationMonths,
		}
		if err := u.subs.AppendHistory(ctx, tx, entry); err != nil {
			return err
		}

		sub := &model.Subscription{
			UserID:        ev.Notes.UserID,
			Status:        model.SubscriptionStatusActive,
			PlanID:        plan.ID,
			PlanName:      plan.Name,
			StartedAt:     startedAt,
			ExpiresAt:     expiresAt,
			PaidAmount:    payment.Amount,
			LastPaymentID: ev.PaymentID,
		}
		if err := u.subs.Upsert(ctx, tx, sub); err != nil {
			return err
		}

		res.Applied = true
		res.Payment = payment
		res.Subscription = sub
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrPlanNotFound) {
			u.log.Error().
				Str("payment_id", ev.PaymentID).
				Str("plan_id", ev.Notes.PlanID).
				Msg("reconciliation aborted: plan referenced by order notes does not exist")
		}
		return nil, txErr
	}

	if res.Applied {
		u.log.Info().
			Str("payment_id", ev.PaymentID).
			Str("user_id", ev.Notes.UserID).
			Str("plan_id", ev.Notes.PlanID).
			Str("processed_by", string(ev.ProcessedBy)).
			Time("expires_at", res.Subscription.ExpiresAt).
			Msg("payment reconciled")
	} else {
		u.log.Debug().
			Str("payment_id", ev.PaymentID).
			Str("processed_by", string(ev.ProcessedBy)).
			Msg("payment already recorded, no-op")
	}
	return res, nil
}
