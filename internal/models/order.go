package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus moves CREATED -> PAID or CREATED -> FAILED and never leaves PAID or FAILED.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "CREATED"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// Order is the immutable commercial commitment materialized from a cart.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string          `json:"owner_id" gorm:"type:varchar(64);not null;index"`
	ProviderID  *string         `json:"provider_id,omitempty" gorm:"type:varchar(36)"`
	AddressID   *string         `json:"address_id,omitempty" gorm:"type:varchar(36)"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(10,2);not null"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Lines       []OrderLine     `json:"lines" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderLine is the priced snapshot of a cart line taken when the order was created.
type OrderLine struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ServiceID string          `json:"service_id" gorm:"type:varchar(36);not null"`
	PackageID *string         `json:"package_id,omitempty" gorm:"type:varchar(36)"`
	AddonID   *string         `json:"addon_id,omitempty" gorm:"type:varchar(36)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"` // unit price x quantity
	CreatedAt time.Time       `json:"created_at"`
}
