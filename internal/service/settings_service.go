package service

import (
	"context"
	"encoding/json"
	"fmt"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type UpdateSettingsRequest struct {
	CompanyName        *string `json:"company_name"`
	CUI                *string `json:"cui"`
	RegCom             *string `json:"reg_com"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	County             *string `json:"county"`
	PostalCode         *string `json:"postal_code"`
	Country            *string `json:"country"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	IBANRon            *string `json:"iban_ron"`
	IBANEur            *string `json:"iban_eur"`
	BankName           *string `json:"bank_name"`
	ProformaSeries     *string `json:"proforma_series"`
	ProformaCounter    *int64  `json:"proforma_counter"`
	EmailSubject       *string `json:"email_subject_template"`
	EmailBody          *string `json:"email_body_template"`
	TermsAndConditions *string `json:"terms_and_conditions"`
}

// --- Interface ---

type SettingsService interface {
	Get(ctx context.Context) (*model.CompanySettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest, userID string) (*model.CompanySettings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *settingsService) Get(ctx context.Context) (*model.CompanySettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, req UpdateSettingsRequest, userID string) (*model.CompanySettings, error) {
	var settings *model.CompanySettings

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var getErr error
		settings, getErr = s.settingsRepo.Get(txCtx)
		if getErr != nil {
			return fmt.Errorf("failed to load company settings: %w", getErr)
		}

		if req.CompanyName != nil {
			if *req.CompanyName == "" {
				return fmt.Errorf("%w: company_name cannot be empty", ErrValidation)
			}
			settings.CompanyName = *req.CompanyName
		}
		if req.CUI != nil {
			settings.CUI = *req.CUI
		}
		if req.RegCom != nil {
			settings.RegCom = *req.RegCom
		}
		if req.Address != nil {
			settings.Address = *req.Address
		}
		if req.City != nil {
			settings.City = *req.City
		}
		if req.County != nil {
			settings.County = *req.County
		}
		if req.PostalCode != nil {
			settings.PostalCode = *req.PostalCode
		}
		if req.Country != nil {
			settings.Country = *req.Country
		}
		if req.Phone != nil {
			settings.Phone = *req.Phone
		}
		if req.Email != nil {
			settings.Email = *req.Email
		}
		if req.IBANRon != nil {
			settings.IBANRon = *req.IBANRon
		}
		if req.IBANEur != nil {
			settings.IBANEur = *req.IBANEur
		}
		if req.BankName != nil {
			settings.BankName = *req.BankName
		}
		if req.ProformaSeries != nil {
			if *req.ProformaSeries == "" {
				return fmt.Errorf("%w: proforma_series cannot be empty", ErrValidation)
			}
			settings.ProformaSeries = *req.ProformaSeries
		}
		if req.ProformaCounter != nil {
			// The counter never moves backwards: already-issued numbers must
			// stay unique even after a manual adjustment.
			if *req.ProformaCounter < settings.ProformaCounter {
				return fmt.Errorf("%w: proforma_counter can only move forward (current %d)",
					ErrValidation, settings.ProformaCounter)
			}
			settings.ProformaCounter = *req.ProformaCounter
		}
		if req.EmailSubject != nil {
			settings.EmailSubject = *req.EmailSubject
		}
		if req.EmailBody != nil {
			settings.EmailBody = *req.EmailBody
		}
		if req.TermsAndConditions != nil {
			settings.TermsAndConditions = *req.TermsAndConditions
		}

		if saveErr := s.settingsRepo.Save(txCtx, settings); saveErr != nil {
			return fmt.Errorf("failed to save company settings: %w", saveErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detailsJSON, _ := json.Marshal(req)
	entry := model.AuditLog{
		Action:     model.ActionUpdateSettings,
		EntityID:   fmt.Sprintf("%d", settings.ID),
		EntityName: settings.CompanyName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}
	_ = s.auditRepo.Log(ctx, &entry)

	return settings, nil
}
