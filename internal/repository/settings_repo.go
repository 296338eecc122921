package repository

import (
	"context"
	"errors"

	"otka-backend/internal/model"

	"gorm.io/gorm"
)

// SettingsRepository manages the company_settings singleton row.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.CompanySettings, error)
	Save(ctx context.Context, settings *model.CompanySettings) error
	// IncrementProformaCounter bumps the counter and returns the new value in
	// a single atomic statement. It must run inside the same transaction that
	// creates the proforma row so a failed create rolls the increment back.
	IncrementProformaCounter(ctx context.Context) (int64, error)
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*model.CompanySettings, error) {
	var settings model.CompanySettings
	err := GetDB(ctx, r.db).First(&settings, "id = ?", model.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.CompanySettings{
			ID:             model.SettingsID,
			CompanyName:    "Otka Mobilier SRL",
			Country:        "România",
			ProformaSeries: "OTK",
			EmailSubject:   "Proformă {number} — {company_name}",
			EmailBody:      "Bună ziua,\n\nAtașat găsiți proforma {number} emisă de {company_name}.\n\nVă mulțumim!",
		}
		if createErr := GetDB(ctx, r.db).Create(&settings).Error; createErr != nil {
			return nil, createErr
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.CompanySettings) error {
	return GetDB(ctx, r.db).Save(settings).Error
}

// Single-statement increment. Never read-then-write from application code,
// otherwise two concurrent creators can mint the same number.
func (r *settingsRepository) IncrementProformaCounter(ctx context.Context) (int64, error) {
	var next int64
	err := GetDB(ctx, r.db).Raw(
		"UPDATE company_settings SET proforma_counter = proforma_counter + 1 WHERE id = ? RETURNING proforma_counter",
		model.SettingsID,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return next, nil
}
