package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"learnhub/backend/internal/apperror"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

const midtransProvider = "midtrans"

// Midtrans opens Snap transactions and checks notification signatures.
type Midtrans struct {
	snap      snap.Client
	serverKey string
}

var _ Gateway = (*Midtrans)(nil)

func NewMidtrans(serverKey string, production bool) *Midtrans {
	m := &Midtrans{serverKey: serverKey}
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m.snap.New(serverKey, env)
	return m
}

// CreateOrder creates a Snap transaction. Midtrans amounts are whole currency units.
func (m *Midtrans) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	if req.AmountCents <= 0 || req.AmountCents%100 != 0 {
		return nil, apperror.Invalid("order amount must be a positive whole amount")
	}
	gross := req.AmountCents / 100
	first, last := splitName(req.CustomerName)

	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       req.OrderID,
			Price:    gross,
			Qty:      1,
			Name:     truncate(req.CourseTitle, 50),
			Category: "course",
		}},
	}

	resp, mErr := m.snap.CreateTransaction(sreq)
	if mErr != nil {
		return nil, apperror.Upstream(midtransProvider, mErr.StatusCode, mErr)
	}
	return &Order{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// VerifySignature checks signature_key == sha512(order_id + status_code + gross_amount + server_key).
func (m *Midtrans) VerifySignature(n Notification) bool {
	if n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, m.serverKey)
	got := strings.ToLower(n.SignatureKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// Signature computes a Midtrans notification signature.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
