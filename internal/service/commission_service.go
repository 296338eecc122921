package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"otka-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// Flat partner commission applied to completed order net totals.
var commissionRate = decimal.NewFromFloat(0.05)

// --- DTOs ---

type PartnerCommission struct {
	PartnerEmail string `json:"partner_email"`
	Orders       int    `json:"orders"`
	TotalNet     string `json:"total_net"`
	Commission   string `json:"commission"`
}

// --- Interface ---

type CommissionService interface {
	// Summarize groups completed orders by partner email for one calendar
	// month ("YYYY-MM", UTC boundaries) and applies the flat 5% commission.
	Summarize(ctx context.Context, month string) ([]PartnerCommission, error)
}

type commissionService struct {
	orderRepo repository.OrderRepository
}

func NewCommissionService(orderRepo repository.OrderRepository) CommissionService {
	return &commissionService{orderRepo: orderRepo}
}

// --- Implementation ---

func (s *commissionService) Summarize(ctx context.Context, month string) ([]PartnerCommission, error) {
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("%w: month must be formatted YYYY-MM", ErrValidation)
	}
	from = from.UTC()
	to := from.AddDate(0, 1, 0)

	orders, err := s.orderRepo.FindCompletedInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed orders: %w", err)
	}

	type bucket struct {
		orders   int
		totalNet decimal.Decimal
	}
	buckets := make(map[string]*bucket)

	for _, order := range orders {
		if order.PartnerEmail == "" {
			continue // direct sale, no commission owed
		}
		b, ok := buckets[order.PartnerEmail]
		if !ok {
			b = &bucket{totalNet: decimal.Zero}
			buckets[order.PartnerEmail] = b
		}
		b.orders++
		b.totalNet = b.totalNet.Add(order.TotalNet)
	}

	emails := make([]string, 0, len(buckets))
	for email := range buckets {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	result := make([]PartnerCommission, 0, len(emails))
	for _, email := range emails {
		b := buckets[email]
		// Commission rounds once, on the monthly sum, not per order.
		commission := b.totalNet.Mul(commissionRate).Round(2)
		result = append(result, PartnerCommission{
			PartnerEmail: email,
			Orders:       b.orders,
			TotalNet:     b.totalNet.StringFixed(2),
			Commission:   commission.StringFixed(2),
		})
	}

	return result, nil
}
