package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment records one checkout attempt against the payment gateway.
type Payment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	StudentID   uint   `gorm:"not null;index" json:"student_id"`
	CourseID    uint   `gorm:"not null;index" json:"course_id"`
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Currency    string `gorm:"size:3;not null" json:"currency"`
	// OrderID is the id we hand to the gateway.
	OrderID string `gorm:"size:100;uniqueIndex" json:"order_id"`
	// GatewayTransactionID is the gateway's own reference, filled on notification.
	GatewayTransactionID string `gorm:"size:100" json:"payment_id"`
	// TransactionID is our internal reference, generated on insert.
	TransactionID  string         `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	Status         PaymentStatus  `gorm:"size:20;not null" json:"status"`
	GatewayPayload datatypes.JSON `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a TransactionID and defaults the status.
func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.TransactionID == "" {
		p.TransactionID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentPending
	}
	return
}
