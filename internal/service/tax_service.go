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

type CreateTaxRateRequest struct {
	Name      string `json:"name" binding:"required"`
	Rate      string `json:"rate" binding:"required"` // percentage string, e.g. "21.00"
	IsDefault bool   `json:"is_default"`
	SortOrder int    `json:"sort_order"`
}

type UpdateTaxRateRequest struct {
	Name      *string `json:"name"`
	Rate      *string `json:"rate"`
	Active    *bool   `json:"active"`
	IsDefault *bool   `json:"is_default"`
	SortOrder *int    `json:"sort_order"`
}

type TaxRateResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rate      string `json:"rate"`
	Active    bool   `json:"active"`
	IsDefault bool   `json:"is_default"`
	SortOrder int    `json:"sort_order"`
	CreatedAt string `json:"created_at"`
}

type ReassignResult struct {
	ProductsUpdated int64 `json:"products_updated"`
}

// --- Interface ---

type TaxRateService interface {
	List(ctx context.Context, activeOnly bool) ([]TaxRateResponse, error)
	Create(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error)
	Update(ctx context.Context, id string, req UpdateTaxRateRequest, userID string) (TaxRateResponse, error)
	Delete(ctx context.Context, id string, userID string) error
	// BulkReassign moves every product from one rate to another. Proforma
	// line items keep their snapshots and are never touched.
	BulkReassign(ctx context.Context, oldID, newID string, userID string) (ReassignResult, error)
}

type taxRateService struct {
	taxRateRepo repository.TaxRateRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewTaxRateService(
	taxRateRepo repository.TaxRateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TaxRateService {
	return &taxRateService{
		taxRateRepo: taxRateRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *taxRateService) List(ctx context.Context, activeOnly bool) ([]TaxRateResponse, error) {
	rates, err := s.taxRateRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tax rates: %w", err)
	}

	res := make([]TaxRateResponse, 0, len(rates))
	for _, r := range rates {
		res = append(res, toTaxRateResponse(r))
	}
	return res, nil
}

func (s *taxRateService) Create(ctx context.Context, req CreateTaxRateRequest, userID string) (TaxRateResponse, error) {
	rate, err := parseRatePercentage(req.Rate)
	if err != nil {
		return TaxRateResponse{}, err
	}

	taxRate := model.TaxRate{
		Name:      req.Name,
		Rate:      rate,
		Active:    true,
		IsDefault: req.IsDefault,
		SortOrder: req.SortOrder,
	}

	// Creating a new default clears every other default in the same
	// transaction, so exactly one active default exists at any time.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.taxRateRepo.Create(txCtx, &taxRate); err != nil {
			return fmt.Errorf("failed to create tax rate: %w", err)
		}
		if taxRate.IsDefault {
			if err := s.taxRateRepo.ClearDefaults(txCtx, taxRate.ID); err != nil {
				return fmt.Errorf("failed to clear previous defaults: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return TaxRateResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateTaxRate, taxRate.ID.String(), taxRate.Name, req)
	return toTaxRateResponse(taxRate), nil
}

func (s *taxRateService) Update(ctx context.Context, id string, req UpdateTaxRateRequest, userID string) (TaxRateResponse, error) {
	rateID, err := uuid.Parse(id)
	if err != nil {
		return TaxRateResponse{}, fmt.Errorf("%w: invalid tax rate id", ErrValidation)
	}

	var taxRate *model.TaxRate
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		taxRate, findErr = s.taxRateRepo.FindByID(txCtx, rateID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tax rate %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch tax rate: %w", findErr)
		}

		if req.Name != nil {
			taxRate.Name = *req.Name
		}
		if req.Rate != nil {
			parsed, parseErr := parseRatePercentage(*req.Rate)
			if parseErr != nil {
				return parseErr
			}
			taxRate.Rate = parsed
		}
		if req.Active != nil {
			taxRate.Active = *req.Active
		}
		if req.SortOrder != nil {
			taxRate.SortOrder = *req.SortOrder
		}
		if req.IsDefault != nil {
			taxRate.IsDefault = *req.IsDefault
			if *req.IsDefault {
				if err := s.taxRateRepo.ClearDefaults(txCtx, taxRate.ID); err != nil {
					return fmt.Errorf("failed to clear previous defaults: %w", err)
				}
			}
		}

		if err := s.taxRateRepo.Update(txCtx, taxRate); err != nil {
			return fmt.Errorf("failed to update tax rate: %w", err)
		}
		return nil
	})
	if err != nil {
		return TaxRateResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateTaxRate, taxRate.ID.String(), taxRate.Name, req)
	return toTaxRateResponse(*taxRate), nil
}

func (s *taxRateService) Delete(ctx context.Context, id string, userID string) error {
	rateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid tax rate id", ErrValidation)
	}

	taxRate, err := s.taxRateRepo.FindByID(ctx, rateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: tax rate %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch tax rate: %w", err)
	}

	products, items, err := s.taxRateRepo.CountReferences(ctx, rateID)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if products > 0 || items > 0 {
		return fmt.Errorf("%w: tax rate %q is referenced by %d products and %d proforma items; disable it instead",
			ErrConflict, taxRate.Name, products, items)
	}

	if err := s.taxRateRepo.Delete(ctx, rateID); err != nil {
		return fmt.Errorf("failed to delete tax rate: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteTaxRate, id, taxRate.Name, map[string]string{"deleted_id": id})
	return nil
}

func (s *taxRateService) BulkReassign(ctx context.Context, oldID, newID string, userID string) (ReassignResult, error) {
	oldRateID, err := uuid.Parse(oldID)
	if err != nil {
		return ReassignResult{}, fmt.Errorf("%w: invalid old tax rate id", ErrValidation)
	}
	newRateID, err := uuid.Parse(newID)
	if err != nil {
		return ReassignResult{}, fmt.Errorf("%w: invalid new tax rate id", ErrValidation)
	}
	if oldRateID == newRateID {
		return ReassignResult{}, fmt.Errorf("%w: old and new tax rates are identical", ErrValidation)
	}

	var affected int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.taxRateRepo.FindByID(txCtx, newRateID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: tax rate %s", ErrNotFound, newID)
			}
			return fmt.Errorf("failed to fetch tax rate: %w", findErr)
		}

		var reassignErr error
		affected, reassignErr = s.taxRateRepo.ReassignProducts(txCtx, oldRateID, newRateID)
		if reassignErr != nil {
			return fmt.Errorf("failed to reassign products: %w", reassignErr)
		}
		return nil
	})
	if err != nil {
		return ReassignResult{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionReassignTax, oldID, "",
		map[string]interface{}{"new_tax_rate_id": newID, "products_updated": affected})

	return ReassignResult{ProductsUpdated: affected}, nil
}

// --- Helpers ---

func parseRatePercentage(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid rate value", ErrValidation)
	}
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return decimal.Zero, fmt.Errorf("%w: rate must be between 0 and 100", ErrValidation)
	}
	return rate, nil
}

func toTaxRateResponse(r model.TaxRate) TaxRateResponse {
	return TaxRateResponse{
		ID:        r.ID.String(),
		Name:      r.Name,
		Rate:      r.Rate.StringFixed(2),
		Active:    r.Active,
		IsDefault: r.IsDefault,
		SortOrder: r.SortOrder,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func (s *taxRateService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	_ = s.auditRepo.Log(ctx, &entry)
}
