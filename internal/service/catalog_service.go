package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CategoryPayload struct {
	Name      string  `json:"name" binding:"required"`
	Slug      string  `json:"slug"`
	ParentID  *string `json:"parent_id"`
	SortOrder int     `json:"sort_order"`
}

type BrandPayload struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

// --- Interface ---

type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req CategoryPayload) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, req CategoryPayload) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]model.Brand, error)
	CreateBrand(ctx context.Context, req BrandPayload) (*model.Brand, error)
	UpdateBrand(ctx context.Context, id string, req BrandPayload) (*model.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, brandRepo repository.BrandRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo, brandRepo: brandRepo}
}

// --- Categories ---

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req CategoryPayload) (*model.Category, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	if existing, err := s.categoryRepo.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, slug)
	}

	parentID, err := parseOptionalUUID(req.ParentID, "parent_id")
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent category %s", ErrNotFound, *parentID)
			}
			return nil, fmt.Errorf("failed to fetch parent category: %w", err)
		}
	}

	category := &model.Category{
		Name:      req.Name,
		Slug:      slug,
		ParentID:  parentID,
		SortOrder: req.SortOrder,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, req CategoryPayload) (*model.Category, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
	}

	category, err := s.categoryRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	category.Name = req.Name
	if req.Slug != "" && req.Slug != category.Slug {
		if existing, err := s.categoryRepo.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, req.Slug)
		}
		category.Slug = req.Slug
	}
	parentID, err := parseOptionalUUID(req.ParentID, "parent_id")
	if err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == category.ID {
		return nil, fmt.Errorf("%w: a category cannot be its own parent", ErrValidation)
	}
	category.ParentID = parentID
	category.SortOrder = req.SortOrder

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid category id", ErrValidation)
	}

	count, err := s.categoryRepo.CountProducts(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category still has %d products", ErrConflict, count)
	}

	return s.categoryRepo.Delete(ctx, uid)
}

// --- Brands ---

func (s *catalogService) ListBrands(ctx context.Context) ([]model.Brand, error) {
	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}
	return brands, nil
}

func (s *catalogService) CreateBrand(ctx context.Context, req BrandPayload) (*model.Brand, error) {
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	brand := &model.Brand{Name: req.Name, Slug: slug}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return brand, nil
}

func (s *catalogService) UpdateBrand(ctx context.Context, id string, req BrandPayload) (*model.Brand, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid brand id", ErrValidation)
	}

	brand, err := s.brandRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: brand %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch brand: %w", err)
	}

	brand.Name = req.Name
	if req.Slug != "" {
		brand.Slug = req.Slug
	}
	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	return brand, nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid brand id", ErrValidation)
	}

	count, err := s.brandRepo.CountProducts(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to count brand products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: brand still has %d products", ErrConflict, count)
	}

	return s.brandRepo.Delete(ctx, uid)
}

// --- Helpers ---

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
