package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/infra/metrics"
	pay "qrdine-billing/internal/infra/payment"
	"qrdine-billing/internal/usecase"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// webhookEvent mirrors the gateway's webhook envelope for the events we
// care about.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string     `json:"id"`
				OrderID  string     `json:"order_id"`
				Amount   int64      `json:"amount"`
				Currency string     `json:"currency"`
				Notes    notesField `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// notesField tolerates the gateway serializing empty notes as [] instead
// of {}.
type notesField struct {
	m map[string]string
}

func (n *notesField) UnmarshalJSON(b []byte) error {
	n.m = nil
	var m map[string]string
	if err := json.Unmarshal(b, &m); err == nil {
		n.m = m
		return nil
	}
	var arr []interface{}
	if err := json.Unmarshal(b, &arr); err == nil {
		return nil
	}
	return errors.New("notes: unexpected JSON shape")
}

func (n notesField) toOrderNotes() model.OrderNotes {
	return model.OrderNotes{
		UserID:             n.m["userId"],
		PlanID:             n.m["planId"],
		IsSetupFeeExpected: n.m["isSetupFeeExpected"],
		CouponCode:         n.m["couponCode"],
	}
}

// handleWebhook is the server-side confirmation path. The body is read raw
// and authenticated against the signature header before any JSON parsing;
// nobody is watching the response, so failures are logged loudly.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.IncWebhookEvent("failed")
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !pay.VerifyWebhookSignature(s.webhookSecret, body, signature) {
		metrics.IncWebhookEvent("bad_signature")
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature mismatch")
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		metrics.IncWebhookEvent("failed")
		writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	if ev.Event != "payment.captured" {
		metrics.IncWebhookEvent("ignored")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Event ignored."})
		return
	}

	entity := ev.Payload.Payment.Entity
	notes := entity.Notes.toOrderNotes()
	if notes.UserID == "" || notes.PlanID == "" {
		metrics.IncWebhookEvent("failed")
		s.log.Error().
			Str("payment_id", entity.ID).
			Str("order_id", entity.OrderID).
			Msg("webhook payment has no usable order notes")
		writeError(w, http.StatusBadRequest, "order notes missing")
		return
	}

	res, err := s.reconcileUC.Reconcile(ctx, usecase.ReconcileEvent{
		PaymentID:   entity.ID,
		OrderID:     entity.OrderID,
		AmountPaise: entity.Amount,
		Currency:    entity.Currency,
		Notes:       notes,
		ProcessedBy: model.ProcessedByWebhook,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			metrics.IncWebhookEvent("failed")
			metrics.IncReconciled("webhook", "failed")
			s.log.Error().
				Str("payment_id", entity.ID).
				Str("plan_id", notes.PlanID).
				Msg("webhook reconciliation hit missing plan, needs manual remediation")
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		metrics.IncWebhookEvent("failed")
		metrics.IncReconciled("webhook", "failed")
		s.log.Error().Err(err).Str("payment_id", entity.ID).Msg("webhook reconciliation failed")
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	if res.Applied {
		metrics.IncWebhookEvent("processed")
		metrics.IncReconciled("webhook", "applied")
	} else {
		metrics.IncWebhookEvent("duplicate")
		metrics.IncReconciled("webhook", "duplicate")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook processed."})
}
