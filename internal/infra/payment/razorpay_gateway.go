package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qrdine-billing/internal/domain"
	"qrdine-billing/internal/domain/model"
	"qrdine-billing/internal/domain/ports/adapter"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements adapter.PaymentGateway using direct HTTP calls
// against the Razorpay Orders/Payments API with basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type razorpayOrderResponse struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

type razorpayPaymentResponse struct {
	ID       string            `json:"id"`
	OrderID  string            `json:"order_id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder implements adapter.PaymentGateway.CreateOrder.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes model.OrderNotes) (*adapter.GatewayOrder, error) {
	requestData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notesToMap(notes),
	}

	var resp razorpayOrderResponse
	if err := g.do(ctx, http.MethodPost, "/orders", requestData, &resp); err != nil {
		return nil, err
	}

	return &adapter.GatewayOrder{
		ID:          resp.ID,
		AmountPaise: resp.Amount,
		Currency:    resp.Currency,
		Receipt:     resp.Receipt,
		Status:      resp.Status,
		Notes:       notesFromMap(resp.Notes),
	}, nil
}

// FetchOrder implements adapter.PaymentGateway.FetchOrder.
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*adapter.GatewayOrder, error) {
	var resp razorpayOrderResponse
	if err := g.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}
	return &adapter.GatewayOrder{
		ID:          resp.ID,
		AmountPaise: resp.Amount,
		Currency:    resp.Currency,
		Receipt:     resp.Receipt,
		Status:      resp.Status,
		Notes:       notesFromMap(resp.Notes),
	}, nil
}

// FetchPayment implements adapter.PaymentGateway.FetchPayment.
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*adapter.GatewayPayment, error) {
	var resp razorpayPaymentResponse
	if err := g.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}
	return &adapter.GatewayPayment{
		ID:          resp.ID,
		OrderID:     resp.OrderID,
		AmountPaise: resp.Amount,
		Currency:    resp.Currency,
		Status:      resp.Status,
		Notes:       notesFromMap(resp.Notes),
	}, nil
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr razorpayErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("%w: razorpay %s: %s", domain.ErrUpstream, apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("%w: razorpay status %d", domain.ErrUpstream, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v, body: %s", domain.ErrUpstream, err, string(raw))
	}
	return nil
}

func notesToMap(n model.OrderNotes) map[string]string {
	m := map[string]string{
		"userId":             n.UserID,
		"planId":             n.PlanID,
		"isSetupFeeExpected": n.IsSetupFeeExpected,
	}
	if n.CouponCode != "" {
		m["couponCode"] = n.CouponCode
	}
	return m
}

func notesFromMap(m map[string]string) model.OrderNotes {
	return model.OrderNotes{
		UserID:             m["userId"],
		PlanID:             m["planId"],
		IsSetupFeeExpected: m["isSetupFeeExpected"],
		CouponCode:         m["couponCode"],
	}
}
