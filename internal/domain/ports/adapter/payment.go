package adapter

import (
	"context"

	"qrdine-billing/internal/domain/model"
)

// GatewayOrder is the provider-side pending order created before checkout.
type GatewayOrder struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
	Notes       model.OrderNotes
}

// GatewayPayment is a captured payment as reported by the provider.
type GatewayPayment struct {
	ID          string
	OrderID     string
	AmountPaise int64
	Currency    string
	Status      string
	Notes       model.OrderNotes
}

// PaymentGateway abstracts the order/payment API of the payment provider.
// Any gateway exposing order creation, order/payment fetch and HMAC-signed
// confirmations satisfies it.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes model.OrderNotes) (*GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}
