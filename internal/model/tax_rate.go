package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRate is a named VAT rate (e.g. "Standard 21%"). Rates referenced by
// products or proforma line items are never hard-deleted; they are disabled
// via Active=false instead. At most one active rate carries IsDefault=true.
type TaxRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"` // percentage, e.g. 21.00
	Active    bool            `gorm:"default:true;index" json:"active"`
	IsDefault bool            `gorm:"default:false" json:"is_default"`
	SortOrder int             `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
