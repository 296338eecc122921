package repository

import (
	"context"
	"time"

	"otka-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProformaListFilter narrows the proforma listing.
type ProformaListFilter struct {
	Status     string // pending, paid, cancelled or empty for all
	FullNumber string // partial match
	ClientName string // partial match
	Page       int
	Limit      int
}

type ProformaRepository interface {
	// Create persists the proforma together with its line items.
	Create(ctx context.Context, proforma *model.Proforma) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proforma, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Proforma, error)
	List(ctx context.Context, filter ProformaListFilter) ([]model.Proforma, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	StampEmailSent(ctx context.Context, id uuid.UUID, to string, at time.Time) error
}

type proformaRepository struct {
	db *gorm.DB
}

func NewProformaRepository(db *gorm.DB) ProformaRepository {
	return &proformaRepository{db: db}
}

func (r *proformaRepository) Create(ctx context.Context, proforma *model.Proforma) error {
	return GetDB(ctx, r.db).Create(proforma).Error
}

func (r *proformaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Proforma, error) {
	var proforma model.Proforma
	if err := GetDB(ctx, r.db).First(&proforma, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proforma, nil
}

func (r *proformaRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Proforma, error) {
	var proforma model.Proforma
	if err := GetDB(ctx, r.db).Preload("Items").First(&proforma, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proforma, nil
}

func (r *proformaRepository) List(ctx context.Context, filter ProformaListFilter) ([]model.Proforma, int64, error) {
	var proformas []model.Proforma
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.FullNumber != "" {
			q = q.Where("full_number LIKE ?", "%"+filter.FullNumber+"%")
		}
		if filter.ClientName != "" {
			q = q.Where("client_name LIKE ?", "%"+filter.ClientName+"%")
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Proforma{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := applyFilter(db.Preload("Items")).
		Order("number desc").
		Offset(offset).Limit(filter.Limit).
		Find(&proformas).Error; err != nil {
		return nil, 0, err
	}

	return proformas, total, nil
}

func (r *proformaRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Proforma{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes the document and its items in one transaction so a failure
// never leaves an itemless proforma behind.
func (r *proformaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proforma_id = ?", id).Delete(&model.ProformaItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Proforma{}).Error
	})
}

func (r *proformaRepository) StampEmailSent(ctx context.Context, id uuid.UUID, to string, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Proforma{}).Where("id = ?", id).
		Updates(map[string]interface{}{"email_sent_at": at, "email_sent_to": to}).Error
}
