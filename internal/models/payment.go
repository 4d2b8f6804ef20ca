package models

import "time"

// PaymentStatus is the local state of a gateway payment. PAID and DUPLICATE are final.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	// PaymentStatusDuplicate marks a capture that was not applied to its order: a second
	// capture for a paid order, or one whose amount or gateway order does not match. Such
	// payments are refunded.
	PaymentStatusDuplicate PaymentStatus = "DUPLICATE"
)

// Payment reconciles one gateway payment against an order. Amount is in minor units.
type Payment struct {
	ID               string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID          string        `json:"order_id" gorm:"type:varchar(36);not null;index"`
	Method           string        `json:"method" gorm:"type:varchar(50)"`
	Status           PaymentStatus `json:"status" gorm:"type:varchar(20);not null"`
	Amount           int64         `json:"amount" gorm:"not null"`
	Currency         string        `json:"currency" gorm:"type:varchar(3)"`
	GatewayOrderID   string        `json:"gateway_order_id" gorm:"type:varchar(64);index"`
	GatewayPaymentID string        `json:"gateway_payment_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	Signature        string        `json:"-" gorm:"type:varchar(128)"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
