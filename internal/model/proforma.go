package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientType enum constants, Romanian legal-entity classification
const (
	ClientTypePF = "PF" // persoană fizică (individual)
	ClientTypePJ = "PJ" // persoană juridică (company)
)

// Currency enum constants
const (
	CurrencyRON = "RON"
	CurrencyEUR = "EUR"
)

// ProformaStatus constants. Transitions are one-way:
// pending → paid or pending → cancelled, never back.
const (
	ProformaPending   = "pending"
	ProformaPaid      = "paid"
	ProformaCancelled = "cancelled"
)

// Proforma is a pre-invoice document issued to a client before payment.
// FullNumber ("{series}-{00001}") is minted from the company settings counter
// inside the same transaction that creates the row, so numbers are unique and
// gap-free even under concurrent creation.
type Proforma struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Series        string          `gorm:"type:varchar(10);not null" json:"series"`
	Number        int64           `gorm:"not null" json:"number"`
	FullNumber    string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"full_number"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	ClientType    string          `gorm:"type:varchar(2);not null" json:"client_type"` // PF, PJ
	ClientName    string          `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientCUI     string          `gorm:"type:varchar(50)" json:"client_cui"`
	ClientRegCom  string          `gorm:"type:varchar(50)" json:"client_reg_com"`
	ClientPhone   string          `gorm:"type:varchar(50)" json:"client_phone"`
	ClientEmail   string          `gorm:"type:varchar(255);not null" json:"client_email"`
	ClientAddress string          `gorm:"type:text" json:"client_address"`
	ClientCity    string          `gorm:"type:varchar(100)" json:"client_city"`
	ClientCounty  string          `gorm:"type:varchar(100)" json:"client_county"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'RON'" json:"currency"` // RON, EUR
	SubtotalNoVAT decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal_no_vat"`
	TotalVAT      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_vat"`
	TotalWithVAT  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_with_vat"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EmailSentAt   *time.Time      `json:"email_sent_at"`
	EmailSentTo   string          `gorm:"type:varchar(255)" json:"email_sent_to"`
	ClientNotes   string          `gorm:"type:text" json:"client_notes"`
	Items         []ProformaItem  `gorm:"foreignKey:ProformaID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName keeps the Romanian plural used by the original schema.
func (Proforma) TableName() string {
	return "proforme"
}

// ProformaItem is a line item owned by its parent proforma. TaxRateValue is a
// percentage snapshot copied from the tax rate at creation time and never
// updated afterwards, so already-issued documents keep their historical math.
type ProformaItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProformaID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"proforma_id"`
	ProductID    *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"`
	SKU          string          `gorm:"type:varchar(100)" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TaxRateID    *uuid.UUID      `gorm:"type:uuid;index" json:"tax_rate_id"`
	TaxRateValue decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate_value"` // percentage snapshot
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	VATAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"vat_amount"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}
