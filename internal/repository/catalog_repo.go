package repository

import (
	"context"

	"otka-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Category{}).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := GetDB(ctx, r.db).Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	List(ctx context.Context) ([]model.Brand, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	return GetDB(ctx, r.db).Create(brand).Error
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	return GetDB(ctx, r.db).Save(brand).Error
}

func (r *brandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Brand{}).Error
}

func (r *brandRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var brand model.Brand
	if err := GetDB(ctx, r.db).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) List(ctx context.Context) ([]model.Brand, error) {
	var brands []model.Brand
	if err := GetDB(ctx, r.db).Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Product{}).Where("brand_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
