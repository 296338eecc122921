package service

import (
	"context"
	"testing"
	"time"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, code, status, partnerEmail, totalNet string, createdAt time.Time) {
	t.Helper()
	order := model.Order{
		OrderCode:    code,
		Source:       model.OrderSourcePartner,
		Status:       status,
		PartnerEmail: partnerEmail,
		CustomerName: "Client Final",
		TotalNet:     d(totalNet),
		CreatedAt:    createdAt,
	}
	if partnerEmail == "" {
		order.Source = model.OrderSourceManual
	}
	require.NoError(t, db.Create(&order).Error)
}

func TestSummarizeCountsOnlyCompletedOrders(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommissionService(repository.NewOrderRepository(db))

	march := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedOrder(t, db, "CMD-202603-00001", model.OrderCompleted, "partner@example.com", "1000.00", march)
	seedOrder(t, db, "CMD-202603-00002", model.OrderPending, "partner@example.com", "500.00", march)
	seedOrder(t, db, "CMD-202603-00003", model.OrderCancelled, "partner@example.com", "300.00", march)

	summary, err := svc.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	require.Len(t, summary, 1)
	assert.Equal(t, "partner@example.com", summary[0].PartnerEmail)
	assert.Equal(t, 1, summary[0].Orders)
	assert.Equal(t, "1000.00", summary[0].TotalNet)
	assert.Equal(t, "50.00", summary[0].Commission)
}

func TestSummarizeRespectsMonthBoundaries(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommissionService(repository.NewOrderRepository(db))

	inside := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lastMoment := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	nextMonth := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	seedOrder(t, db, "CMD-202603-00001", model.OrderCompleted, "partner@example.com", "100.00", inside)
	seedOrder(t, db, "CMD-202603-00002", model.OrderCompleted, "partner@example.com", "100.00", lastMoment)
	seedOrder(t, db, "CMD-202604-00001", model.OrderCompleted, "partner@example.com", "999.00", nextMonth)

	summary, err := svc.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].Orders)
	assert.Equal(t, "200.00", summary[0].TotalNet)
}

func TestSummarizeSkipsDirectSalesAndSortsByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommissionService(repository.NewOrderRepository(db))

	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	seedOrder(t, db, "CMD-202603-00001", model.OrderCompleted, "zeta@example.com", "400.00", march)
	seedOrder(t, db, "CMD-202603-00002", model.OrderCompleted, "alpha@example.com", "200.00", march)
	seedOrder(t, db, "CMD-202603-00003", model.OrderCompleted, "", "5000.00", march) // direct sale

	summary, err := svc.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	require.Len(t, summary, 2)
	assert.Equal(t, "alpha@example.com", summary[0].PartnerEmail)
	assert.Equal(t, "zeta@example.com", summary[1].PartnerEmail)
}

func TestSummarizeRoundsOnceOnTheMonthlySum(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommissionService(repository.NewOrderRepository(db))

	march := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	// 3 × 33.33 = 99.99; 5% of the sum is 4.9995 → 5.00 rounded once.
	// Rounding per order (1.67 × 3 = 5.01) would differ.
	for i, code := range []string{"CMD-202603-00001", "CMD-202603-00002", "CMD-202603-00003"} {
		seedOrder(t, db, code, model.OrderCompleted, "partner@example.com", "33.33", march.Add(time.Duration(i)*time.Hour))
	}

	summary, err := svc.Summarize(context.Background(), "2026-03")
	require.NoError(t, err)

	require.Len(t, summary, 1)
	assert.Equal(t, "99.99", summary[0].TotalNet)
	assert.Equal(t, "5.00", summary[0].Commission)
}

func TestSummarizeRejectsMalformedMonth(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommissionService(repository.NewOrderRepository(db))

	for _, month := range []string{"2026-13", "2026/03", "march", ""} {
		_, err := svc.Summarize(context.Background(), month)
		assert.ErrorIs(t, err, ErrValidation, "month %q", month)
	}
}
