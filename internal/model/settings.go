package model

import (
	"time"
)

// SettingsID is the fixed primary key of the single company_settings row.
const SettingsID = 1

// CompanySettings is a singleton row holding issuer identity, the proforma
// numbering series and the document counter. ProformaCounter only ever moves
// forward; it is incremented atomically inside the same transaction that
// persists the new proforma (see repository.SettingsRepository).
type CompanySettings struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CompanyName        string    `gorm:"type:varchar(255);not null" json:"company_name"`
	CUI                string    `gorm:"type:varchar(50)" json:"cui"`
	RegCom             string    `gorm:"type:varchar(50)" json:"reg_com"`
	Address            string    `gorm:"type:text" json:"address"`
	City               string    `gorm:"type:varchar(100)" json:"city"`
	County             string    `gorm:"type:varchar(100)" json:"county"`
	PostalCode         string    `gorm:"type:varchar(20)" json:"postal_code"`
	Country            string    `gorm:"type:varchar(100);default:'România'" json:"country"`
	Phone              string    `gorm:"type:varchar(50)" json:"phone"`
	Email              string    `gorm:"type:varchar(255)" json:"email"`
	IBANRon            string    `gorm:"type:varchar(50)" json:"iban_ron"`
	IBANEur            string    `gorm:"type:varchar(50)" json:"iban_eur"`
	BankName           string    `gorm:"type:varchar(255)" json:"bank_name"`
	ProformaSeries     string    `gorm:"type:varchar(10);not null;default:'OTK'" json:"proforma_series"`
	ProformaCounter    int64     `gorm:"not null;default:0" json:"proforma_counter"`
	EmailSubject       string    `gorm:"type:text" json:"email_subject_template"`
	EmailBody          string    `gorm:"type:text" json:"email_body_template"`
	TermsAndConditions string    `gorm:"type:text" json:"terms_and_conditions"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName keeps the singleton in company_settings regardless of pluralization.
func (CompanySettings) TableName() string {
	return "company_settings"
}
