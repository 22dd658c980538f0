package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/repository"
	"qrdine-billing/internal/infra/metrics"
	pay "qrdine-billing/internal/infra/payment"
	red "qrdine-billing/internal/infra/redis"
	"qrdine-billing/internal/usecase"
)

type createOrderRequest struct {
	PlanID     string  `json:"planId"`
	BaseAmount float64 `json:"baseAmount"`
	CouponCode string  `json:"couponCode,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	userID := UserID(ctx)

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, red.OrderCreateKey(userID), s.ordersPerMinute, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "too many order attempts, slow down")
			return
		}
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.orderUC.CreateOrder(ctx, userID, req.PlanID, req.BaseAmount, req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthenticated")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user or plan not found")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid plan or amount")
		default:
			writeError(w, http.StatusInternalServerError, "could not create order")
		}
		return
	}

	metrics.IncOrderCreated()
	writeJSON(w, http.StatusOK, summary)
}

type verifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// handleVerifyPayment is the client-side confirmation path. The checkout JS
// posts the gateway's payment id, order id and signature here after the user
// completes payment. The webhook may already have won the race; that is a
// success too.
func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RazorpayPaymentID == "" || req.RazorpayOrderID == "" || req.RazorpaySignature == "" {
		writeError(w, http.StatusBadRequest, "missing payment fields")
		return
	}

	// Authenticity first; nothing below runs on a forged callback. The
	// response never echoes the expected signature.
	if !pay.VerifyCheckoutSignature(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.log.Warn().
			Str("order_id", req.RazorpayOrderID).
			Str("payment_id", req.RazorpayPaymentID).
			Str("user_id", UserID(ctx)).
			Msg("checkout signature mismatch")
		writeError(w, http.StatusBadRequest, "payment could not be verified")
		return
	}

	// The order notes, custodied by the gateway, carry the original intent.
	gp, err := s.gateway.FetchPayment(ctx, req.RazorpayPaymentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not confirm payment with gateway")
		return
	}
	notes := gp.Notes
	if notes.UserID == "" || notes.PlanID == "" {
		order, err := s.gateway.FetchOrder(ctx, req.RazorpayOrderID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not confirm payment with gateway")
			return
		}
		notes = order.Notes
	}

	res, err := s.reconcileUC.Reconcile(ctx, usecase.ReconcileEvent{
		PaymentID:   req.RazorpayPaymentID,
		OrderID:     req.RazorpayOrderID,
		AmountPaise: gp.AmountPaise,
		Currency:    gp.Currency,
		Notes:       notes,
		ProcessedBy: model.ProcessedByClient,
	})
	if err != nil {
		metrics.IncReconciled("client", "failed")
		switch {
		case errors.Is(err, domain.ErrPlanNotFound):
			writeError(w, http.StatusNotFound, "subscription plan is misconfigured, contact support")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "payment is missing order details")
		default:
			writeError(w, http.StatusInternalServerError, "payment verification failed")
		}
		return
	}

	if res.Applied {
		metrics.IncReconciled("client", "applied")
	} else {
		metrics.IncReconciled("client", "duplicate")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"paymentId": req.RazorpayPaymentID,
	})
}

type validateCouponRequest struct {
	CouponCode string `json:"couponCode"`
	PlanID     string `json:"planId"`
}

func (s *Server) handleValidateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := s.couponUC.Validate(ctx, req.CouponCode, req.PlanID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not validate coupon")
		return
	}

	resp := map[string]interface{}{
		"isValid": check.Valid,
		"message": check.Message,
	}
	if check.Valid {
		resp["coupon"] = map[string]interface{}{
			"code":  check.Coupon.Code,
			"type":  check.Coupon.Type,
			"value": check.Coupon.Value,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	userID := UserID(ctx)
	sub, err := s.subUC.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no subscription")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load subscription")
		return
	}

	history, err := s.subUC.History(ctx, userID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load subscription history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": sub,
		"history":      history,
	})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	plans, err := s.plans.ListAll(ctx, repository.NoTX)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}
