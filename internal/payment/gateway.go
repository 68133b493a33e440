package payment

import (
	"context"

	"learnhub/backend/internal/models"
)

type OrderRequest struct {
	OrderID       string
	AmountCents   int64
	Currency      string
	CourseID      uint
	CourseTitle   string
	CustomerName  string
	CustomerEmail string
}

// Order is the gateway's checkout handle for an OrderRequest.
type Order struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is the gateway's asynchronous payment status callback.
type Notification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
}

// Gateway is the payment provider: it opens orders and authenticates callbacks.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifySignature(n Notification) bool
}

// StatusOf maps the gateway's transaction status to a payment status.
func StatusOf(n Notification) models.PaymentStatus {
	switch n.TransactionStatus {
	case "settlement":
		return models.PaymentSuccess
	case "capture":
		if n.FraudStatus == "" || n.FraudStatus == "accept" {
			return models.PaymentSuccess
		}
		return models.PaymentPending
	case "deny", "cancel", "expire", "failure":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}
