package repository

import (
	"context"

	"otka-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *model.Partner) error
	Update(ctx context.Context, partner *model.Partner) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error)
	FindByEmail(ctx context.Context, email string) (*model.Partner, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Partner, int64, error)
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Create(partner).Error
}

func (r *partnerRepository) Update(ctx context.Context, partner *model.Partner) error {
	return GetDB(ctx, r.db).Save(partner).Error
}

func (r *partnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Partner{}).Error
}

func (r *partnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	var partner model.Partner
	if err := GetDB(ctx, r.db).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) FindByEmail(ctx context.Context, email string) (*model.Partner, error) {
	var partner model.Partner
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Partner, int64, error) {
	var partners []model.Partner
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		if search != "" {
			q = q.Where("name ILIKE ? OR company_name ILIKE ? OR email ILIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Partner{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := applyFilter(db.Model(&model.Partner{})).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&partners).Error; err != nil {
		return nil, 0, err
	}

	return partners, total, nil
}
