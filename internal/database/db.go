package database

import (
	"log"

	"otka-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.TaxRate{},
		&model.CompanySettings{},
		&model.Category{},
		&model.Brand{},
		&model.Product{},
		&model.Partner{},
		&model.Order{},
		&model.OrderItem{},
		&model.Proforma{},
		&model.ProformaItem{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
