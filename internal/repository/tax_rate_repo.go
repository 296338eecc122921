package repository

import (
	"context"

	"otka-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxRateRepository interface {
	Create(ctx context.Context, rate *model.TaxRate) error
	Update(ctx context.Context, rate *model.TaxRate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error)
	List(ctx context.Context, activeOnly bool) ([]model.TaxRate, error)
	// ClearDefaults unsets is_default on every rate except the given one.
	// Called inside the same transaction that sets a new default.
	ClearDefaults(ctx context.Context, exceptID uuid.UUID) error
	// CountReferences reports how many products and proforma line items still
	// point at the rate. A referenced rate must not be deleted.
	CountReferences(ctx context.Context, id uuid.UUID) (products int64, items int64, err error)
	// ReassignProducts moves every product from oldID to newID in one UPDATE
	// and returns the number of affected rows.
	ReassignProducts(ctx context.Context, oldID, newID uuid.UUID) (int64, error)
}

type taxRateRepository struct {
	db *gorm.DB
}

func NewTaxRateRepository(db *gorm.DB) TaxRateRepository {
	return &taxRateRepository{db: db}
}

func (r *taxRateRepository) Create(ctx context.Context, rate *model.TaxRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *taxRateRepository) Update(ctx context.Context, rate *model.TaxRate) error {
	return GetDB(ctx, r.db).Save(rate).Error
}

func (r *taxRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TaxRate{}).Error
}

func (r *taxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRate, error) {
	var rate model.TaxRate
	if err := GetDB(ctx, r.db).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *taxRateRepository) List(ctx context.Context, activeOnly bool) ([]model.TaxRate, error) {
	var rates []model.TaxRate
	query := GetDB(ctx, r.db).Order("sort_order asc, created_at asc")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *taxRateRepository) ClearDefaults(ctx context.Context, exceptID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.TaxRate{}).
		Where("id != ? AND is_default = ?", exceptID, true).
		Update("is_default", false).Error
}

func (r *taxRateRepository) CountReferences(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	var products, items int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Product{}).Where("tax_rate_id = ?", id).Count(&products).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&model.ProformaItem{}).Where("tax_rate_id = ?", id).Count(&items).Error; err != nil {
		return 0, 0, err
	}

	return products, items, nil
}

func (r *taxRateRepository) ReassignProducts(ctx context.Context, oldID, newID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.Product{}).
		Where("tax_rate_id = ?", oldID).
		Update("tax_rate_id", newID)
	return result.RowsAffected, result.Error
}
