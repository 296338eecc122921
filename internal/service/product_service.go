package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	SKU         string   `json:"sku" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"`
	TaxRateID   *string  `json:"tax_rate_id"`
	CategoryID  *string  `json:"category_id"`
	BrandID     *string  `json:"brand_id"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *string   `json:"price"`
	TaxRateID   *string   `json:"tax_rate_id"`
	CategoryID  *string   `json:"category_id"`
	BrandID     *string   `json:"brand_id"`
	Stock       *int      `json:"stock"`
	Active      *bool     `json:"active"`
	Images      *[]string `json:"images"` // pointer so nil = not sent, [] = clear all
}

type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	TaxRateID   *uuid.UUID `json:"tax_rate_id"`
	TaxRateName string     `json:"tax_rate_name,omitempty"`
	TaxRate     string     `json:"tax_rate,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Category    string     `json:"category,omitempty"`
	BrandID     *uuid.UUID `json:"brand_id"`
	Brand       string     `json:"brand,omitempty"`
	Stock       int        `json:"stock"`
	Active      bool       `json:"active"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ProductListQuery struct {
	Search     string
	CategoryID string
	BrandID    string
	ActiveOnly bool
	Page       int
	Limit      int
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, userID string) (ProductResponse, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, userID string) (ProductResponse, error)
	DeleteProduct(ctx context.Context, id string, userID string) error
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	GetProducts(ctx context.Context, query ProductListQuery) ([]ProductResponse, int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	taxRateRepo repository.TaxRateRepository
	auditRepo   repository.AuditRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	taxRateRepo repository.TaxRateRepository,
	auditRepo repository.AuditRepository,
) ProductService {
	return &productService{
		productRepo: productRepo,
		taxRateRepo: taxRateRepo,
		auditRepo:   auditRepo,
	}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, userID string) (ProductResponse, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid price", ErrValidation)
	}
	if price.IsNegative() {
		return ProductResponse{}, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.Stock < 0 {
		return ProductResponse{}, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	if existing, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return ProductResponse{}, fmt.Errorf("%w: SKU %s already exists", ErrConflict, req.SKU)
	}

	taxRateID, err := s.resolveTaxRateRef(ctx, req.TaxRateID)
	if err != nil {
		return ProductResponse{}, err
	}
	categoryID, err := parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return ProductResponse{}, err
	}
	brandID, err := parseOptionalUUID(req.BrandID, "brand_id")
	if err != nil {
		return ProductResponse{}, err
	}

	product := &model.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		TaxRateID:   taxRateID,
		CategoryID:  categoryID,
		BrandID:     brandID,
		Stock:       req.Stock,
		Active:      true,
		Images:      marshalImages(req.Images),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.writeProductAudit(ctx, userID, model.ActionCreateProduct, product, req)
	return toProductResponse(*product), nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, userID string) (ProductResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return ProductResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ProductResponse{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		price, parseErr := decimal.NewFromString(*req.Price)
		if parseErr != nil || price.IsNegative() {
			return ProductResponse{}, fmt.Errorf("%w: invalid price", ErrValidation)
		}
		product.Price = price
	}
	if req.TaxRateID != nil {
		taxRateID, resolveErr := s.resolveTaxRateRef(ctx, req.TaxRateID)
		if resolveErr != nil {
			return ProductResponse{}, resolveErr
		}
		product.TaxRateID = taxRateID
		product.TaxRate = nil
	}
	if req.CategoryID != nil {
		categoryID, parseErr := parseOptionalUUID(req.CategoryID, "category_id")
		if parseErr != nil {
			return ProductResponse{}, parseErr
		}
		product.CategoryID = categoryID
		product.Category = nil
	}
	if req.BrandID != nil {
		brandID, parseErr := parseOptionalUUID(req.BrandID, "brand_id")
		if parseErr != nil {
			return ProductResponse{}, parseErr
		}
		product.BrandID = brandID
		product.Brand = nil
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return ProductResponse{}, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.Images != nil {
		product.Images = marshalImages(*req.Images)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to update product: %w", err)
	}

	s.writeProductAudit(ctx, userID, model.ActionUpdateProduct, product, req)
	return toProductResponse(*product), nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string, userID string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.writeProductAudit(ctx, userID, model.ActionDeleteProduct, product, nil)
	return nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return ProductResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}
	return toProductResponse(*product), nil
}

func (s *productService) GetProducts(ctx context.Context, query ProductListQuery) ([]ProductResponse, int64, error) {
	filter := repository.ProductListFilter{
		Search:     query.Search,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		Limit:      query.Limit,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if query.CategoryID != "" {
		id, err := uuid.Parse(query.CategoryID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid category_id", ErrValidation)
		}
		filter.CategoryID = &id
	}
	if query.BrandID != "" {
		id, err := uuid.Parse(query.BrandID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid brand_id", ErrValidation)
		}
		filter.BrandID = &id
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res, total, nil
}

// --- Helpers ---

func (s *productService) resolveTaxRateRef(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tax_rate_id", ErrValidation)
	}
	if _, err := s.taxRateRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: tax rate %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch tax rate: %w", err)
	}
	return &id, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	return &id, nil
}

func marshalImages(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(images)
	return string(raw)
}

func unmarshalImages(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return []string{}
	}
	return images
}

func (s *productService) writeProductAudit(ctx context.Context, userID, action string, product *model.Product, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	_ = s.auditRepo.Log(ctx, &entry)
}

// --- Mapping ---

func toProductResponse(p model.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		TaxRateID:   p.TaxRateID,
		CategoryID:  p.CategoryID,
		BrandID:     p.BrandID,
		Stock:       p.Stock,
		Active:      p.Active,
		Images:      unmarshalImages(p.Images),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.TaxRate != nil {
		res.TaxRateName = p.TaxRate.Name
		res.TaxRate = p.TaxRate.Rate.StringFixed(2)
	}
	if p.Category != nil {
		res.Category = p.Category.Name
	}
	if p.Brand != nil {
		res.Brand = p.Brand.Name
	}
	return res
}
