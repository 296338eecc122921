package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a catalog taxonomy node (optionally nested one level via ParentID)
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Brand is a furniture manufacturer/label shown on product pages
type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a catalog item. Price is the tax-exclusive unit price; the
// applicable VAT percentage comes from the referenced TaxRate.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	TaxRateID   *uuid.UUID      `gorm:"type:uuid;index" json:"tax_rate_id"`
	TaxRate     *TaxRate        `gorm:"foreignKey:TaxRateID" json:"tax_rate,omitempty"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID     *uuid.UUID      `gorm:"type:uuid;index" json:"brand_id"`
	Brand       *Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Stock       int             `gorm:"default:0" json:"stock"`
	Active      bool            `gorm:"default:true;index" json:"active"`
	Images      string          `gorm:"type:jsonb" json:"images"` // JSON array of image URLs
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
