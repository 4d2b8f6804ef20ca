package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single open basket of an owner. It is emptied, never deleted.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string     `json:"owner_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	Lines     []CartLine `json:"lines,omitempty" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"created_at"`
}

// CartLine references catalog entries; UnitPrice is a display hint only and is never used
// to price an order.
type CartLine struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string          `json:"cart_id" gorm:"type:varchar(36);not null;index"`
	ServiceID string          `json:"service_id" gorm:"type:varchar(36);not null"`
	PackageID *string         `json:"package_id,omitempty" gorm:"type:varchar(36)"`
	AddonID   *string         `json:"addon_id,omitempty" gorm:"type:varchar(36)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Selection is the catalog key of a line: a service with an optional package and addon.
type Selection struct {
	ServiceID string
	PackageID *string
	AddonID   *string
}

// Selection returns the line's catalog key.
func (l CartLine) Selection() Selection {
	return Selection{ServiceID: l.ServiceID, PackageID: l.PackageID, AddonID: l.AddonID}
}
