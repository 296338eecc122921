package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type OrderItemPayload struct {
	ProductID *string `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice string  `json:"unit_price" binding:"required"`
}

type CreateOrderRequest struct {
	Source          string             `json:"source" binding:"required,oneof=MANUAL PARTNER"`
	PartnerEmail    string             `json:"partner_email"`
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	ShippingAddress string             `json:"shipping_address"`
	Note            string             `json:"note"`
	Items           []OrderItemPayload `json:"items" binding:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID *uuid.UUID `json:"product_id"`
	SKU       string     `json:"sku"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	UnitPrice string     `json:"unit_price"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderCode       string              `json:"order_code"`
	Source          string              `json:"source"`
	Status          string              `json:"status"`
	PartnerEmail    string              `json:"partner_email"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email"`
	CustomerPhone   string              `json:"customer_phone"`
	ShippingAddress string              `json:"shipping_address"`
	TotalNet        string              `json:"total_net"`
	Note            string              `json:"note"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

type OrderListQuery struct {
	Status       string
	Source       string
	PartnerEmail string
	Page         int
	Limit        int
}

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, userID string) (OrderResponse, error)
	GetOrder(ctx context.Context, id string) (OrderResponse, error)
	GetOrders(ctx context.Context, query OrderListQuery) ([]OrderResponse, int64, error)
	// UpdateStatus moves a pending order to COMPLETED or CANCELLED.
	// Completed and cancelled orders are terminal.
	UpdateStatus(ctx context.Context, id string, status string, userID string) (OrderResponse, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	partnerRepo repository.PartnerRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	events      EventBroadcaster
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	partnerRepo repository.PartnerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventBroadcaster,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		partnerRepo: partnerRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		events:      events,
	}
}

// --- Implementation ---

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, userID string) (OrderResponse, error) {
	if req.Source == model.OrderSourcePartner {
		if req.PartnerEmail == "" {
			return OrderResponse{}, fmt.Errorf("%w: partner_email is required for PARTNER orders", ErrValidation)
		}
		partner, err := s.partnerRepo.FindByEmail(ctx, req.PartnerEmail)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderResponse{}, fmt.Errorf("%w: no partner registered under %s", ErrNotFound, req.PartnerEmail)
			}
			return OrderResponse{}, fmt.Errorf("failed to fetch partner: %w", err)
		}
		if !partner.IsActive {
			return OrderResponse{}, fmt.Errorf("%w: partner %s is inactive", ErrInvalidState, req.PartnerEmail)
		}
	}
	if req.CustomerEmail != "" {
		if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
			return OrderResponse{}, fmt.Errorf("%w: invalid customer_email", ErrValidation)
		}
	}

	items, totalNet, err := buildOrderItems(req.Items)
	if err != nil {
		return OrderResponse{}, err
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		code, codeErr := s.nextOrderCode(txCtx)
		if codeErr != nil {
			return codeErr
		}

		order = &model.Order{
			OrderCode:       code,
			Source:          req.Source,
			Status:          model.OrderPending,
			PartnerEmail:    req.PartnerEmail,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			TotalNet:        totalNet,
			Note:            req.Note,
			Items:           items,
		}
		if createErr := s.orderRepo.Create(txCtx, order); createErr != nil {
			return fmt.Errorf("failed to create order: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateOrder, order.ID.String(), order.OrderCode, req)
	if s.events != nil {
		s.events.BroadcastEvent("order.created", map[string]string{
			"id":         order.ID.String(),
			"order_code": order.OrderCode,
			"total_net":  order.TotalNet.StringFixed(2),
		})
	}

	return toOrderResponse(*order), nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (OrderResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.orderRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("%w: order %s", ErrNotFound, id)
		}
		return OrderResponse{}, fmt.Errorf("failed to fetch order: %w", err)
	}
	return toOrderResponse(*order), nil
}

func (s *orderService) GetOrders(ctx context.Context, query OrderListQuery) ([]OrderResponse, int64, error) {
	filter := repository.OrderListFilter{
		Status:       query.Status,
		Source:       query.Source,
		PartnerEmail: query.PartnerEmail,
		Page:         query.Page,
		Limit:        query.Limit,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toOrderResponse(o))
	}
	return res, total, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status string, userID string) (OrderResponse, error) {
	if status != model.OrderCompleted && status != model.OrderCancelled {
		return OrderResponse{}, fmt.Errorf("%w: status must be COMPLETED or CANCELLED", ErrValidation)
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", ErrValidation)
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByIDWithItems(txCtx, uid)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to fetch order: %w", findErr)
		}
		if order.Status != model.OrderPending {
			return fmt.Errorf("%w: order %s is %s and cannot change status",
				ErrInvalidState, order.OrderCode, order.Status)
		}
		if updateErr := s.orderRepo.UpdateStatus(txCtx, uid, status); updateErr != nil {
			return fmt.Errorf("failed to update order status: %w", updateErr)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return OrderResponse{}, err
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateOrder, order.ID.String(), order.OrderCode,
		map[string]string{"status": status})

	return toOrderResponse(*order), nil
}

// --- Helpers ---

// nextOrderCode derives a monthly sequential code like CMD-202608-00042.
// Codes are advisory; uniqueness is guarded by the order_code index, and a
// collision under concurrency simply fails the create.
func (s *orderService) nextOrderCode(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("CMD-%s-", time.Now().UTC().Format("200601"))
	count, err := s.orderRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count orders: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func buildOrderItems(payloads []OrderItemPayload) ([]model.OrderItem, decimal.Decimal, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	totalNet := decimal.Zero

	for i, p := range payloads {
		if p.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: items[%d]: quantity must be positive", ErrValidation, i)
		}
		unitPrice, err := decimal.NewFromString(p.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("%w: items[%d]: invalid unit_price", ErrValidation, i)
		}

		item := model.OrderItem{
			SKU:       p.SKU,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: unitPrice,
		}
		if p.ProductID != nil && *p.ProductID != "" {
			pid, parseErr := uuid.Parse(*p.ProductID)
			if parseErr != nil {
				return nil, decimal.Zero, fmt.Errorf("%w: items[%d]: invalid product_id", ErrValidation, i)
			}
			item.ProductID = &pid
		}

		items = append(items, item)
		totalNet = totalNet.Add(unitPrice.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2))
	}

	return items, totalNet, nil
}

func (s *orderService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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

// --- Mapping ---

func toOrderResponse(o model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}

	return OrderResponse{
		ID:              o.ID,
		OrderCode:       o.OrderCode,
		Source:          o.Source,
		Status:          o.Status,
		PartnerEmail:    o.PartnerEmail,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		TotalNet:        o.TotalNet.StringFixed(2),
		Note:            o.Note,
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}
