package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
)

type reconcileFixture struct {
	uc       *reconcileUC
	users    *memUserRepo
	plans    *memPlanRepo
	payments *memPaymentRepo
	subs     *memSubscriptionRepo
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	f := &reconcileFixture{
		users:    newMemUserRepo(),
		plans:    newMemPlanRepo(),
		payments: newMemPaymentRepo(),
		subs:     newMemSubscriptionRepo(),
	}
	f.uc = NewReconcileUseCase(f.payments, f.plans, f.users, f.subs, newMemTxManager(), testLogger())

	ctx := context.Background()
	u, _ := model.NewUser("user-1", "owner@bistro.example", "rest-1")
	_ = f.users.Save(ctx, repository.NoTX, u)
	p, _ := model.NewPlan("pro-monthly", "Pro", 1, 699)
	_ = f.plans.Save(ctx, repository.NoTX, p)
	return f
}

func captureEvent(paymentID string, setupFee bool) ReconcileEvent {
	expected := "false"
	if setupFee {
		expected = "true"
	}
	return ReconcileEvent{
		PaymentID:   paymentID,
		OrderID:     "order_000001",
		AmountPaise: 44800,
		Currency:    "INR",
		Notes: model.OrderNotes{
			UserID:             "user-1",
			PlanID:             "pro-monthly",
			IsSetupFeeExpected: expected,
			CouponCode:         "SAVE50",
		},
		ProcessedBy: model.ProcessedByWebhook,
	}
}

func TestReconcileAppliesOnce(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	res, err := f.uc.Reconcile(ctx, captureEvent("pay_A", true))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !res.Applied {
		t.Fatalf("first reconciliation should apply")
	}
	if res.Payment.Amount != 448 {
		t.Fatalf("amount = %v, want 448", res.Payment.Amount)
	}
	if res.Subscription.Status != model.SubscriptionStatusActive {
		t.Fatalf("status = %s", res.Subscription.Status)
	}
	if res.Subscription.LastPaymentID != "pay_A" {
		t.Fatalf("lastPaymentId = %s", res.Subscription.LastPaymentID)
	}

	u, _ := f.users.FindByID(ctx, repository.NoTX, "user-1")
	if !u.SetupFeePaid {
		t.Fatalf("setup fee flag not set")
	}
	if f.subs.historyCount() != 1 {
		t.Fatalf("history entries = %d, want 1", f.subs.historyCount())
	}

	// Second delivery of the same payment id: success-shaped no-op.
	res2, err := f.uc.Reconcile(ctx, captureEvent("pay_A", true))
	if err != nil {
		t.Fatalf("duplicate Reconcile: %v", err)
	}
	if res2.Applied {
		t.Fatalf("duplicate must not apply")
	}
	if f.payments.count() != 1 || f.subs.historyCount() != 1 {
		t.Fatalf("duplicate mutated state: payments=%d history=%d", f.payments.count(), f.subs.historyCount())
	}
}

func TestReconcileConcurrentDuplicates(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	applied := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.uc.Reconcile(ctx, captureEvent("pay_RACE", true))
			if err != nil {
				t.Errorf("Reconcile: %v", err)
				return
			}
			applied <- res.Applied
		}()
	}
	wg.Wait()
	close(applied)

	wins := 0
	for a := range applied {
		if a {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("applied %d times, want exactly 1", wins)
	}
	if f.payments.count() != 1 {
		t.Fatalf("payments = %d, want 1", f.payments.count())
	}
	if f.subs.historyCount() != 1 {
		t.Fatalf("history entries = %d, want 1", f.subs.historyCount())
	}
}

func TestReconcileSetupFeeOneShot(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	if _, err := f.uc.Reconcile(ctx, captureEvent("pay_1", true)); err != nil {
		t.Fatalf("first: %v", err)
	}
	// A later payment whose notes mistakenly claim the fee again must not
	// blow up; the flag stays true.
	if _, err := f.uc.Reconcile(ctx, captureEvent("pay_2", true)); err != nil {
		t.Fatalf("second: %v", err)
	}
	u, _ := f.users.FindByID(ctx, repository.NoTX, "user-1")
	if !u.SetupFeePaid {
		t.Fatalf("flag cleared")
	}
	if f.payments.count() != 2 || f.subs.historyCount() != 2 {
		t.Fatalf("payments=%d history=%d, want 2/2", f.payments.count(), f.subs.historyCount())
	}
}

func TestReconcileMonthEndClamp(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	f.uc.now = func() time.Time {
		return time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)
	}

	res, err := f.uc.Reconcile(ctx, captureEvent("pay_clamp", false))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	want := time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC)
	if !res.Subscription.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v (leap-year clamp)", res.Subscription.ExpiresAt, want)
	}
}

func TestReconcilePlanNotFound(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	ev := captureEvent("pay_X", false)
	ev.Notes.PlanID = "deleted-plan"

	_, err := f.uc.Reconcile(ctx, ev)
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Fatalf("got %v, want ErrPlanNotFound", err)
	}
	// No partial writes.
	if f.payments.count() != 0 || f.subs.historyCount() != 0 {
		t.Fatalf("partial writes leaked: payments=%d history=%d", f.payments.count(), f.subs.historyCount())
	}
}

func TestReconcileRejectsIncompleteEvent(t *testing.T) {
	f := newReconcileFixture(t)
	ctx := context.Background()

	ev := captureEvent("", false)
	if _, err := f.uc.Reconcile(ctx, ev); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty payment id: got %v", err)
	}

	ev = captureEvent("pay_Y", false)
	ev.Notes.UserID = ""
	if _, err := f.uc.Reconcile(ctx, ev); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty notes user: got %v", err)
	}
}
