package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/adapter"
	"qrdine-billing/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// OrderSummary is returned to the paying client so it can open the gateway
// checkout with the exact amount we computed.
type OrderSummary struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	AmountPaise   int64   `json:"amountPaise"`
	Currency      string  `json:"currency"`
	Receipt       string  `json:"receipt"`
	NeedsSetupFee bool    `json:"needsSetupFee"`
}

type OrderUseCase interface {
	// CreateOrder prices the checkout and creates a pending gateway order
	// carrying the business intent in its notes. No local state is written.
	CreateOrder(ctx context.Context, userID, planID string, baseAmount float64, couponCode string) (*OrderSummary, error)
}

var _ OrderUseCase = (*orderUC)(nil)

type orderUC struct {
	users    repository.UserRepository
	plans    repository.PlanRepository
	billing  repository.BillingConfigRepository
	coupons  CouponUseCase
	gateway  adapter.PaymentGateway
	currency string
	now      func() time.Time
	log      *zerolog.Logger
}

func NewOrderUseCase(
	users repository.UserRepository,
	plans repository.PlanRepository,
	billing repository.BillingConfigRepository,
	coupons CouponUseCase,
	gateway adapter.PaymentGateway,
	currency string,
	logger *zerolog.Logger,
) *orderUC {
	return &orderUC{
		users:    users,
		plans:    plans,
		billing:  billing,
		coupons:  coupons,
		gateway:  gateway,
		currency: currency,
		now:      time.Now,
		log:      logger,
	}
}

func (u *orderUC) CreateOrder(ctx context.Context, userID, planID string, baseAmount float64, couponCode string) (*OrderSummary, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if planID == "" || baseAmount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if _, err := u.plans.FindByID(ctx, repository.NoTX, planID); err != nil {
		return nil, err
	}

	cfg, err := u.billing.Get(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	// An ineligible coupon silently prices as "no discount"; the pre-checkout
	// validate endpoint is where the user learns why.
	var coupon *model.Coupon
	appliedCode := ""
	if couponCode != "" {
		check, err := u.coupons.Validate(ctx, couponCode, planID)
		if err != nil {
			return nil, err
		}
		if check.Valid {
			coupon = check.Coupon
			appliedCode = check.Coupon.Code
		}
	}

	quote := ComputeQuote(baseAmount, coupon, user.SetupFeePaid, cfg.SetupFee)

	// Receipt ids are timestamp+user derived. Not collision-free under rapid
	// repeated calls by the same user; uniqueness is enforced by the gateway
	// order id, not the receipt.
	receipt := fmt.Sprintf("rcpt_%s_%d", userIDPrefix(userID), u.now().UnixMilli())

	notes := model.OrderNotes{
		UserID:             userID,
		PlanID:             planID,
		IsSetupFeeExpected: fmt.Sprintf("%t", quote.NeedsSetupFee),
		CouponCode:         appliedCode,
	}

	order, err := u.gateway.CreateOrder(ctx, quote.TotalPaise, u.currency, receipt, notes)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Str("plan_id", planID).Msg("gateway order creation failed")
		if errors.Is(err, domain.ErrUpstream) {
			return nil, err
		}
		return nil, domain.ErrUpstream
	}

	u.log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("plan_id", planID).
		Int64("amount_paise", quote.TotalPaise).
		Bool("needs_setup_fee", quote.NeedsSetupFee).
		Msg("gateway order created")

	return &OrderSummary{
		OrderID:       order.ID,
		Amount:        quote.Total,
		AmountPaise:   quote.TotalPaise,
		Currency:      u.currency,
		Receipt:       receipt,
		NeedsSetupFee: quote.NeedsSetupFee,
	}, nil
}

func userIDPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
