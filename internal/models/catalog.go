package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a bookable catalog entry offered by a provider.
type Service struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CategoryID  string           `json:"category_id" gorm:"type:varchar(36);index"`
	ProviderID  string           `json:"provider_id" gorm:"type:varchar(36);index"`
	Name        string           `json:"name" gorm:"type:varchar(255);not null"`
	Description string           `json:"description" gorm:"type:text"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty" gorm:"type:numeric(10,2)"`
	IsVirtual   bool             `json:"is_virtual" gorm:"not null;default:false"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ServicePackage is a priced variant of a Service.
type ServicePackage struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ServiceID   string          `json:"service_id" gorm:"type:varchar(36);not null;index"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ServiceAddon is an optional extra that can be booked alongside a Service.
type ServiceAddon struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ServiceID string          `json:"service_id" gorm:"type:varchar(36);not null;index"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}
