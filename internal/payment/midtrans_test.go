package payment_test

import (
	"context"
	"strings"
	"testing"

	"learnhub/backend/internal/apperror"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/payment"

	"github.com/stretchr/testify/assert"
)

func signed(orderID, status, gross, key string) payment.Notification {
	return payment.Notification{
		OrderID:           orderID,
		StatusCode:        status,
		GrossAmount:       gross,
		SignatureKey:      payment.Signature(orderID, status, gross, key),
		TransactionStatus: "settlement",
	}
}

func TestMidtransVerifySignature(t *testing.T) {
	m := payment.NewMidtrans("SB-server-key", false)

	n := signed("order-1", "200", "80000.00", "SB-server-key")
	assert.True(t, m.VerifySignature(n))

	upper := n
	upper.SignatureKey = strings.ToUpper(n.SignatureKey)
	assert.True(t, m.VerifySignature(upper), "hex case is ignored")

	tampered := n
	tampered.GrossAmount = "1.00"
	assert.False(t, m.VerifySignature(tampered))

	assert.False(t, m.VerifySignature(signed("order-1", "200", "80000.00", "other-key")))

	missing := n
	missing.SignatureKey = ""
	assert.False(t, m.VerifySignature(missing))
}

func TestMidtransRejectsFractionalAmount(t *testing.T) {
	m := payment.NewMidtrans("SB-server-key", false)

	_, err := m.CreateOrder(context.Background(), payment.OrderRequest{OrderID: "o", AmountCents: 12_345})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          models.PaymentStatus
	}{
		{"settlement", "", models.PaymentSuccess},
		{"capture", "accept", models.PaymentSuccess},
		{"capture", "challenge", models.PaymentPending},
		{"pending", "", models.PaymentPending},
		{"expire", "", models.PaymentFailed},
		{"deny", "", models.PaymentFailed},
	}
	for _, tt := range tests {
		got := payment.StatusOf(payment.Notification{TransactionStatus: tt.status, FraudStatus: tt.fraud})
		assert.Equal(t, tt.want, got, "%s/%s", tt.status, tt.fraud)
	}
}
