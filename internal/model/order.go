package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSource enum constants
const (
	OrderSourceManual  = "MANUAL"  // entered by an admin on behalf of a client
	OrderSourcePartner = "PARTNER" // placed through a partner account
)

// OrderStatus constants
const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
	OrderCancelled = "CANCELLED"
)

// Order is a sale used as input to the monthly commission summary.
// Only COMPLETED orders count toward a partner's commission.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderCode       string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_code"`
	Source          string          `gorm:"type:varchar(20);not null;index" json:"source"` // MANUAL, PARTNER
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PartnerEmail    string          `gorm:"type:varchar(255);index" json:"partner_email"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(50)" json:"customer_phone"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	TotalNet        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_net"`
	Note            string          `gorm:"type:text" json:"note"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a line item within an Order
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"`
	SKU       string          `gorm:"type:varchar(100)" json:"sku"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
}
