package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePartnerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	CompanyName   string `json:"company_name"`
	CUI           string `json:"cui"`
	RegCom        string `json:"reg_com"`
	Phone         string `json:"phone"`
	IBAN          string `json:"iban"`
	ContactPerson string `json:"contact_person"`
}

type UpdatePartnerRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	CompanyName   *string `json:"company_name"`
	CUI           *string `json:"cui"`
	RegCom        *string `json:"reg_com"`
	Phone         *string `json:"phone"`
	IBAN          *string `json:"iban"`
	ContactPerson *string `json:"contact_person"`
	IsActive      *bool   `json:"is_active"`
}

type PartnerResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	CompanyName   string    `json:"company_name"`
	CUI           string    `json:"cui"`
	RegCom        string    `json:"reg_com"`
	Phone         string    `json:"phone"`
	IBAN          string    `json:"iban"`
	ContactPerson string    `json:"contact_person"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// --- Interface ---

type PartnerService interface {
	CreatePartner(ctx context.Context, req CreatePartnerRequest) (PartnerResponse, error)
	UpdatePartner(ctx context.Context, id string, req UpdatePartnerRequest) (PartnerResponse, error)
	DeletePartner(ctx context.Context, id string) error
	GetPartner(ctx context.Context, id string) (PartnerResponse, error)
	GetPartners(ctx context.Context, search string, page, limit int) ([]PartnerResponse, int64, error)
}

// --- Implementation ---

type partnerService struct {
	partnerRepo repository.PartnerRepository
}

func NewPartnerService(partnerRepo repository.PartnerRepository) PartnerService {
	return &partnerService{partnerRepo: partnerRepo}
}

func (s *partnerService) CreatePartner(ctx context.Context, req CreatePartnerRequest) (PartnerResponse, error) {
	if req.Name == "" {
		return PartnerResponse{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return PartnerResponse{}, fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	// Partner email doubles as the commission grouping key, so it stays unique.
	if existing, err := s.partnerRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return PartnerResponse{}, fmt.Errorf("%w: a partner with email %s already exists", ErrConflict, req.Email)
	}

	partner := &model.Partner{
		Name:          req.Name,
		Email:         req.Email,
		CompanyName:   req.CompanyName,
		CUI:           req.CUI,
		RegCom:        req.RegCom,
		Phone:         req.Phone,
		IBAN:          req.IBAN,
		ContactPerson: req.ContactPerson,
		IsActive:      true,
	}

	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return PartnerResponse{}, fmt.Errorf("failed to create partner: %w", err)
	}

	return toPartnerResponse(*partner), nil
}

func (s *partnerService) UpdatePartner(ctx context.Context, id string, req UpdatePartnerRequest) (PartnerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("%w: invalid partner id", ErrValidation)
	}

	partner, err := s.partnerRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartnerResponse{}, fmt.Errorf("%w: partner %s", ErrNotFound, id)
		}
		return PartnerResponse{}, fmt.Errorf("failed to fetch partner: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return PartnerResponse{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		partner.Name = *req.Name
	}
	if req.Email != nil && *req.Email != partner.Email {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return PartnerResponse{}, fmt.Errorf("%w: invalid email format", ErrValidation)
		}
		if existing, err := s.partnerRepo.FindByEmail(ctx, *req.Email); err == nil && existing != nil {
			return PartnerResponse{}, fmt.Errorf("%w: a partner with email %s already exists", ErrConflict, *req.Email)
		}
		partner.Email = *req.Email
	}
	if req.CompanyName != nil {
		partner.CompanyName = *req.CompanyName
	}
	if req.CUI != nil {
		partner.CUI = *req.CUI
	}
	if req.RegCom != nil {
		partner.RegCom = *req.RegCom
	}
	if req.Phone != nil {
		partner.Phone = *req.Phone
	}
	if req.IBAN != nil {
		partner.IBAN = *req.IBAN
	}
	if req.ContactPerson != nil {
		partner.ContactPerson = *req.ContactPerson
	}
	if req.IsActive != nil {
		partner.IsActive = *req.IsActive
	}

	if err := s.partnerRepo.Update(ctx, partner); err != nil {
		return PartnerResponse{}, fmt.Errorf("failed to update partner: %w", err)
	}

	return toPartnerResponse(*partner), nil
}

func (s *partnerService) DeletePartner(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid partner id", ErrValidation)
	}
	if _, err := s.partnerRepo.FindByID(ctx, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: partner %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch partner: %w", err)
	}
	// Soft delete; historical orders keep the partner email for commissions.
	return s.partnerRepo.Delete(ctx, uid)
}

func (s *partnerService) GetPartner(ctx context.Context, id string) (PartnerResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return PartnerResponse{}, fmt.Errorf("%w: invalid partner id", ErrValidation)
	}
	partner, err := s.partnerRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PartnerResponse{}, fmt.Errorf("%w: partner %s", ErrNotFound, id)
		}
		return PartnerResponse{}, fmt.Errorf("failed to fetch partner: %w", err)
	}
	return toPartnerResponse(*partner), nil
}

func (s *partnerService) GetPartners(ctx context.Context, search string, page, limit int) ([]PartnerResponse, int64, error) {
	partners, total, err := s.partnerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch partners: %w", err)
	}

	res := make([]PartnerResponse, 0, len(partners))
	for _, p := range partners {
		res = append(res, toPartnerResponse(p))
	}
	return res, total, nil
}

// --- Mapping ---

func toPartnerResponse(p model.Partner) PartnerResponse {
	return PartnerResponse{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		CompanyName:   p.CompanyName,
		CUI:           p.CUI,
		RegCom:        p.RegCom,
		Phone:         p.Phone,
		IBAN:          p.IBAN,
		ContactPerson: p.ContactPerson,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
