package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Collaborator interfaces ---

// ProformaRenderer produces the PDF bytes for an issued proforma.
type ProformaRenderer interface {
	Render(proforma *model.Proforma, settings *model.CompanySettings) ([]byte, error)
}

// MailMessage is an outbound email with an optional PDF attachment.
type MailMessage struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// MailSender dispatches transactional email.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

// EventBroadcaster pushes back-office events to connected dashboard clients.
type EventBroadcaster interface {
	BroadcastEvent(event string, payload interface{})
}

// --- DTOs ---

type ProformaItemPayload struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"` // decimal string
	TaxRateID   string `json:"tax_rate_id"`                   // empty = use the default rate
}

type CreateProformaRequest struct {
	ClientType    string                `json:"client_type" binding:"required,oneof=PF PJ"`
	ClientName    string                `json:"client_name" binding:"required"`
	ClientCUI     string                `json:"client_cui"`
	ClientRegCom  string                `json:"client_reg_com"`
	ClientPhone   string                `json:"client_phone"`
	ClientEmail   string                `json:"client_email" binding:"required,email"`
	ClientAddress string                `json:"client_address"`
	ClientCity    string                `json:"client_city"`
	ClientCounty  string                `json:"client_county"`
	Currency      string                `json:"currency" binding:"omitempty,oneof=RON EUR"`
	ClientNotes   string                `json:"client_notes"`
	Items         []ProformaItemPayload `json:"items" binding:"required"`
}

type ProformaItemResponse struct {
	ID           string  `json:"id"`
	ProductID    *string `json:"product_id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	UnitPrice    string  `json:"unit_price"`
	TaxRateID    *string `json:"tax_rate_id"`
	TaxRateValue string  `json:"tax_rate_value"`
	Subtotal     string  `json:"subtotal"`
	VATAmount    string  `json:"vat_amount"`
	Total        string  `json:"total"`
}

type ProformaResponse struct {
	ID            string                 `json:"id"`
	Series        string                 `json:"series"`
	Number        int64                  `json:"number"`
	FullNumber    string                 `json:"full_number"`
	IssueDate     string                 `json:"issue_date"`
	ClientType    string                 `json:"client_type"`
	ClientName    string                 `json:"client_name"`
	ClientCUI     string                 `json:"client_cui"`
	ClientRegCom  string                 `json:"client_reg_com"`
	ClientPhone   string                 `json:"client_phone"`
	ClientEmail   string                 `json:"client_email"`
	ClientAddress string                 `json:"client_address"`
	ClientCity    string                 `json:"client_city"`
	ClientCounty  string                 `json:"client_county"`
	Currency      string                 `json:"currency"`
	SubtotalNoVAT string                 `json:"subtotal_no_vat"`
	TotalVAT      string                 `json:"total_vat"`
	TotalWithVAT  string                 `json:"total_with_vat"`
	Status        string                 `json:"status"`
	EmailSentAt   *string                `json:"email_sent_at"`
	EmailSentTo   string                 `json:"email_sent_to"`
	ClientNotes   string                 `json:"client_notes"`
	Items         []ProformaItemResponse `json:"items"`
	CreatedAt     string                 `json:"created_at"`
}

// --- Interface ---

type ProformaService interface {
	Create(ctx context.Context, req CreateProformaRequest, userID string) (ProformaResponse, error)
	Get(ctx context.Context, id string) (ProformaResponse, error)
	List(ctx context.Context, filter repository.ProformaListFilter) ([]ProformaResponse, int64, error)
	ConfirmPayment(ctx context.Context, id string, userID string) (ProformaResponse, error)
	Cancel(ctx context.Context, id string, userID string) (ProformaResponse, error)
	Delete(ctx context.Context, id string, userID string) error
	GeneratePDF(ctx context.Context, id string) ([]byte, string, error)
	SendEmail(ctx context.Context, id string, toEmail string, userID string) (ProformaResponse, error)
}

type proformaService struct {
	proformaRepo repository.ProformaRepository
	taxRateRepo  repository.TaxRateRepository
	settingsRepo repository.SettingsRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	renderer     ProformaRenderer
	mailer       MailSender
	events       EventBroadcaster
}

func NewProformaService(
	proformaRepo repository.ProformaRepository,
	taxRateRepo repository.TaxRateRepository,
	settingsRepo repository.SettingsRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	renderer ProformaRenderer,
	mailer MailSender,
	events EventBroadcaster,
) ProformaService {
	return &proformaService{
		proformaRepo: proformaRepo,
		taxRateRepo:  taxRateRepo,
		settingsRepo: settingsRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		renderer:     renderer,
		mailer:       mailer,
		events:       events,
	}
}

// Bounded retry on counter contention. The increment itself is a single
// atomic UPDATE, but serialization failures and lock timeouts can still
// abort the enclosing transaction under load.
const maxCreateAttempts = 3

// --- Implementation ---

func (s *proformaService) Create(ctx context.Context, req CreateProformaRequest, userID string) (ProformaResponse, error) {
	if err := validateClient(req); err != nil {
		return ProformaResponse{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = model.CurrencyRON
	}

	items, totals, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return ProformaResponse{}, err
	}

	// Seed the singleton settings row before entering the write
	// transaction; the counter increment below assumes it exists.
	if _, err := s.settingsRepo.Get(ctx); err != nil {
		return ProformaResponse{}, fmt.Errorf("failed to load company settings: %w", err)
	}

	var created *model.Proforma
	var lastErr error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		lastErr = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			// The increment goes first so the transaction opens on the
			// write lock instead of upgrading a read lock mid-flight.
			number, err := s.settingsRepo.IncrementProformaCounter(txCtx)
			if err != nil {
				return fmt.Errorf("failed to increment proforma counter: %w", err)
			}

			settings, err := s.settingsRepo.Get(txCtx)
			if err != nil {
				return fmt.Errorf("failed to load company settings: %w", err)
			}

			proforma := &model.Proforma{
				Series:        settings.ProformaSeries,
				Number:        number,
				FullNumber:    fmt.Sprintf("%s-%05d", settings.ProformaSeries, number),
				IssueDate:     time.Now().UTC(),
				ClientType:    req.ClientType,
				ClientName:    req.ClientName,
				ClientCUI:     req.ClientCUI,
				ClientRegCom:  req.ClientRegCom,
				ClientPhone:   req.ClientPhone,
				ClientEmail:   req.ClientEmail,
				ClientAddress: req.ClientAddress,
				ClientCity:    req.ClientCity,
				ClientCounty:  req.ClientCounty,
				Currency:      currency,
				SubtotalNoVAT: totals.SubtotalNoVAT,
				TotalVAT:      totals.TotalVAT,
				TotalWithVAT:  totals.TotalWithVAT,
				Status:        model.ProformaPending,
				ClientNotes:   req.ClientNotes,
				Items:         items,
			}

			if err := s.proformaRepo.Create(txCtx, proforma); err != nil {
				return fmt.Errorf("failed to create proforma: %w", err)
			}

			created = proforma
			return nil
		})

		if lastErr == nil {
			break
		}
		if !isNumberingConflict(lastErr) {
			return ProformaResponse{}, lastErr
		}
	}
	if lastErr != nil {
		return ProformaResponse{}, fmt.Errorf("%w after %d attempts: %v", ErrNumberingExhausted, maxCreateAttempts, lastErr)
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateProforma, created.ID.String(), created.FullNumber, req)
	if s.events != nil {
		s.events.BroadcastEvent("proforma.created", map[string]string{
			"id":          created.ID.String(),
			"full_number": created.FullNumber,
			"total":       created.TotalWithVAT.StringFixed(2) + " " + created.Currency,
		})
	}

	return toProformaResponse(*created), nil
}

func (s *proformaService) Get(ctx context.Context, id string) (ProformaResponse, error) {
	proforma, err := s.findByIDString(ctx, id)
	if err != nil {
		return ProformaResponse{}, err
	}
	return toProformaResponse(*proforma), nil
}

func (s *proformaService) List(ctx context.Context, filter repository.ProformaListFilter) ([]ProformaResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	proformas, total, err := s.proformaRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proformas: %w", err)
	}

	result := make([]ProformaResponse, 0, len(proformas))
	for _, p := range proformas {
		result = append(result, toProformaResponse(p))
	}
	return result, total, nil
}

func (s *proformaService) ConfirmPayment(ctx context.Context, id string, userID string) (ProformaResponse, error) {
	proforma, err := s.transitionStatus(ctx, id, model.ProformaPaid)
	if err != nil {
		return ProformaResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionConfirmProforma, proforma.ID.String(), proforma.FullNumber, nil)
	if s.events != nil {
		s.events.BroadcastEvent("proforma.paid", map[string]string{
			"id":          proforma.ID.String(),
			"full_number": proforma.FullNumber,
		})
	}

	return toProformaResponse(*proforma), nil
}

func (s *proformaService) Cancel(ctx context.Context, id string, userID string) (ProformaResponse, error) {
	proforma, err := s.transitionStatus(ctx, id, model.ProformaCancelled)
	if err != nil {
		return ProformaResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionCancelProforma, proforma.ID.String(), proforma.FullNumber, nil)
	return toProformaResponse(*proforma), nil
}

// transitionStatus moves a pending proforma to paid or cancelled. Both
// transitions are one-way; anything not pending is refused.
func (s *proformaService) transitionStatus(ctx context.Context, id string, status string) (*model.Proforma, error) {
	proformaID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid proforma id", ErrValidation)
	}

	var proforma *model.Proforma
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		proforma, findErr = s.proformaRepo.FindByIDWithItems(txCtx, proformaID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: proforma %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch proforma: %w", findErr)
		}

		if proforma.Status != model.ProformaPending {
			return fmt.Errorf("%w: proforma %s is already %s", ErrInvalidState, proforma.FullNumber, proforma.Status)
		}

		if updateErr := s.proformaRepo.UpdateStatus(txCtx, proformaID, status); updateErr != nil {
			return fmt.Errorf("failed to update proforma status: %w", updateErr)
		}

		proforma.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	return proforma, nil
}

func (s *proformaService) Delete(ctx context.Context, id string, userID string) error {
	proforma, err := s.findByIDString(ctx, id)
	if err != nil {
		return err
	}

	// Paid documents are immutable: they entered the client's accounting.
	if proforma.Status == model.ProformaPaid {
		return fmt.Errorf("%w: paid proforma %s cannot be deleted", ErrInvalidState, proforma.FullNumber)
	}

	if err := s.proformaRepo.Delete(ctx, proforma.ID); err != nil {
		return fmt.Errorf("failed to delete proforma: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteProforma, proforma.ID.String(), proforma.FullNumber, nil)
	return nil
}

func (s *proformaService) GeneratePDF(ctx context.Context, id string) ([]byte, string, error) {
	proforma, err := s.findByIDString(ctx, id)
	if err != nil {
		return nil, "", err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load company settings: %w", err)
	}

	data, err := s.renderer.Render(proforma, settings)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	filename := fmt.Sprintf("Proforma-%s.pdf", proforma.FullNumber)
	return data, filename, nil
}

func (s *proformaService) SendEmail(ctx context.Context, id string, toEmail string, userID string) (ProformaResponse, error) {
	proforma, err := s.findByIDString(ctx, id)
	if err != nil {
		return ProformaResponse{}, err
	}

	if toEmail == "" {
		toEmail = proforma.ClientEmail
	}
	if toEmail == "" {
		return ProformaResponse{}, fmt.Errorf("%w: no recipient email", ErrValidation)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return ProformaResponse{}, fmt.Errorf("failed to load company settings: %w", err)
	}

	data, err := s.renderer.Render(proforma, settings)
	if err != nil {
		return ProformaResponse{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	subject := RenderTemplate(settings.EmailSubject, proforma.FullNumber, settings.CompanyName)
	body := RenderTemplate(settings.EmailBody, proforma.FullNumber, settings.CompanyName)

	msg := MailMessage{
		To:             toEmail,
		Subject:        subject,
		Body:           body,
		Attachment:     data,
		AttachmentName: fmt.Sprintf("Proforma-%s.pdf", proforma.FullNumber),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return ProformaResponse{}, fmt.Errorf("%w: %v", ErrMailFailed, err)
	}

	now := time.Now().UTC()
	if err := s.proformaRepo.StampEmailSent(ctx, proforma.ID, toEmail, now); err != nil {
		return ProformaResponse{}, fmt.Errorf("failed to stamp email delivery: %w", err)
	}
	proforma.EmailSentAt = &now
	proforma.EmailSentTo = toEmail

	s.writeAuditLog(ctx, userID, model.ActionEmailProforma, proforma.ID.String(), proforma.FullNumber,
		map[string]string{"to": toEmail})

	return toProformaResponse(*proforma), nil
}

// --- Helpers ---

// RenderTemplate substitutes the {number} and {company_name} placeholders
// used by the configurable email subject and body templates.
func RenderTemplate(tpl, fullNumber, companyName string) string {
	return strings.NewReplacer(
		"{number}", fullNumber,
		"{company_name}", companyName,
	).Replace(tpl)
}

func validateClient(req CreateProformaRequest) error {
	if req.ClientType != model.ClientTypePF && req.ClientType != model.ClientTypePJ {
		return fmt.Errorf("%w: client_type must be PF or PJ", ErrValidation)
	}
	if strings.TrimSpace(req.ClientName) == "" {
		return fmt.Errorf("%w: client_name is required", ErrValidation)
	}
	if strings.TrimSpace(req.ClientEmail) == "" {
		return fmt.Errorf("%w: client_email is required", ErrValidation)
	}
	if req.ClientType == model.ClientTypePJ {
		if strings.TrimSpace(req.ClientCUI) == "" {
			return fmt.Errorf("%w: client_cui is required for PJ clients", ErrValidation)
		}
		if strings.TrimSpace(req.ClientRegCom) == "" {
			return fmt.Errorf("%w: client_reg_com is required for PJ clients", ErrValidation)
		}
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: empty order", ErrValidation)
	}
	return nil
}

// buildItems resolves tax rates, snapshots their percentage values and
// computes per-line totals. Runs before the create transaction, it only reads.
func (s *proformaService) buildItems(ctx context.Context, payloads []ProformaItemPayload) ([]model.ProformaItem, DocumentTotals, error) {
	var defaultRate *model.TaxRate

	items := make([]model.ProformaItem, 0, len(payloads))
	lines := make([]LineTotals, 0, len(payloads))

	for i, payload := range payloads {
		if strings.TrimSpace(payload.Name) == "" {
			return nil, DocumentTotals{}, fmt.Errorf("%w: item %d has no name", ErrValidation, i+1)
		}

		unitPrice, err := decimal.NewFromString(payload.UnitPrice)
		if err != nil {
			return nil, DocumentTotals{}, fmt.Errorf("%w: item %d has an invalid unit_price", ErrValidation, i+1)
		}

		var rate *model.TaxRate
		if payload.TaxRateID != "" {
			rateID, err := uuid.Parse(payload.TaxRateID)
			if err != nil {
				return nil, DocumentTotals{}, fmt.Errorf("%w: item %d has an invalid tax_rate_id", ErrValidation, i+1)
			}
			rate, err = s.taxRateRepo.FindByID(ctx, rateID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, DocumentTotals{}, fmt.Errorf("%w: tax rate %s", ErrNotFound, payload.TaxRateID)
				}
				return nil, DocumentTotals{}, fmt.Errorf("failed to fetch tax rate: %w", err)
			}
		} else {
			if defaultRate == nil {
				defaultRate, err = s.findDefaultRate(ctx)
				if err != nil {
					return nil, DocumentTotals{}, err
				}
			}
			rate = defaultRate
		}

		line, err := ComputeLine(payload.Quantity, unitPrice, rate.Rate)
		if err != nil {
			return nil, DocumentTotals{}, fmt.Errorf("item %d: %w", i+1, err)
		}

		item := model.ProformaItem{
			SKU:          payload.SKU,
			Name:         payload.Name,
			Description:  payload.Description,
			Quantity:     payload.Quantity,
			UnitPrice:    unitPrice,
			TaxRateValue: rate.Rate,
			Subtotal:     line.Subtotal,
			VATAmount:    line.VATAmount,
			Total:        line.Total,
		}
		rateID := rate.ID
		item.TaxRateID = &rateID

		if payload.ProductID != "" {
			productID, err := uuid.Parse(payload.ProductID)
			if err != nil {
				return nil, DocumentTotals{}, fmt.Errorf("%w: item %d has an invalid product_id", ErrValidation, i+1)
			}
			item.ProductID = &productID
		}

		items = append(items, item)
		lines = append(lines, line)
	}

	return items, SumLines(lines), nil
}

func (s *proformaService) findDefaultRate(ctx context.Context) (*model.TaxRate, error) {
	rates, err := s.taxRateRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax rates: %w", err)
	}
	for i := range rates {
		if rates[i].IsDefault {
			return &rates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no default tax rate configured", ErrValidation)
}

func (s *proformaService) findByIDString(ctx context.Context, id string) (*model.Proforma, error) {
	proformaID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid proforma id", ErrValidation)
	}

	proforma, err := s.proformaRepo.FindByIDWithItems(ctx, proformaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proforma %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch proforma: %w", err)
	}
	return proforma, nil
}

// isNumberingConflict reports whether the create transaction failed on
// contention rather than a real error: serialization aborts and lock
// timeouts from postgres, busy/locked from sqlite in tests, or a duplicate
// full_number if two transactions still managed to race.
func isNumberingConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"could not serialize",
		"deadlock detected",
		"lock timeout",
		"database is locked",
		"database table is locked",
		"duplicate key",
		"unique constraint",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (s *proformaService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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

	// Best-effort audit log, don't fail the operation if logging fails
	_ = s.auditRepo.Log(ctx, &entry)
}

// --- Mapping ---

func toProformaResponse(p model.Proforma) ProformaResponse {
	resp := ProformaResponse{
		ID:            p.ID.String(),
		Series:        p.Series,
		Number:        p.Number,
		FullNumber:    p.FullNumber,
		IssueDate:     p.IssueDate.Format("2006-01-02"),
		ClientType:    p.ClientType,
		ClientName:    p.ClientName,
		ClientCUI:     p.ClientCUI,
		ClientRegCom:  p.ClientRegCom,
		ClientPhone:   p.ClientPhone,
		ClientEmail:   p.ClientEmail,
		ClientAddress: p.ClientAddress,
		ClientCity:    p.ClientCity,
		ClientCounty:  p.ClientCounty,
		Currency:      p.Currency,
		SubtotalNoVAT: p.SubtotalNoVAT.StringFixed(2),
		TotalVAT:      p.TotalVAT.StringFixed(2),
		TotalWithVAT:  p.TotalWithVAT.StringFixed(2),
		Status:        p.Status,
		EmailSentTo:   p.EmailSentTo,
		ClientNotes:   p.ClientNotes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}

	if p.EmailSentAt != nil {
		sentAt := p.EmailSentAt.Format(time.RFC3339)
		resp.EmailSentAt = &sentAt
	}

	resp.Items = make([]ProformaItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		itemResp := ProformaItemResponse{
			ID:           item.ID.String(),
			SKU:          item.SKU,
			Name:         item.Name,
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice.StringFixed(2),
			TaxRateValue: item.TaxRateValue.StringFixed(2),
			Subtotal:     item.Subtotal.StringFixed(2),
			VATAmount:    item.VATAmount.StringFixed(2),
			Total:        item.Total.StringFixed(2),
		}
		if item.ProductID != nil {
			id := item.ProductID.String()
			itemResp.ProductID = &id
		}
		if item.TaxRateID != nil {
			id := item.TaxRateID.String()
			itemResp.TaxRateID = &id
		}
		resp.Items = append(resp.Items, itemResp)
	}

	return resp
}
