package repository

import (
	"context"
	"time"

	"otka-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderListFilter narrows the order listing.
type OrderListFilter struct {
	Status       string
	Source       string
	PartnerEmail string
	Page         int
	Limit        int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	// FindCompletedInRange returns completed orders created within [from, to).
	// Used by the commission aggregator; boundaries are UTC.
	FindCompletedInRange(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Source != "" {
			q = q.Where("source = ?", filter.Source)
		}
		if filter.PartnerEmail != "" {
			q = q.Where("partner_email = ?", filter.PartnerEmail)
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := applyFilter(db.Preload("Items")).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).Where("order_code LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) FindCompletedInRange(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Where("status = ? AND created_at >= ? AND created_at < ?", model.OrderCompleted, from, to).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
