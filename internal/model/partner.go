package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner is a B2B reseller earning commission on completed orders placed
// under their email. Orders reference partners loosely by email so manual
// orders entered by an admin still count toward the monthly summary.
type Partner struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	CompanyName   string         `gorm:"type:varchar(255)" json:"company_name"`
	CUI           string         `gorm:"type:varchar(50)" json:"cui"`
	RegCom        string         `gorm:"type:varchar(50)" json:"reg_com"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	IBAN          string         `gorm:"type:varchar(50)" json:"iban"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
