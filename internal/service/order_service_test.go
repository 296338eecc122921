package service

import (
	"context"
	"testing"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db      *gorm.DB
	service OrderService
	events  *stubBroadcaster
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	events := &stubBroadcaster{}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		events,
	)
	return &orderFixture{db: db, service: svc, events: events}
}

func (f *orderFixture) seedPartner(t *testing.T, email string, active bool) {
	t.Helper()
	partner := model.Partner{
		Name:     "Mobexpert Deco",
		Email:    email,
		IsActive: active,
	}
	require.NoError(t, f.db.Create(&partner).Error)
}

func manualOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Source:       model.OrderSourceManual,
		CustomerName: "Maria Ionescu",
		Items: []OrderItemPayload{
			{Name: "Canapea Oslo", Quantity: 1, UnitPrice: "2499.00"},
			{Name: "Taburet Riga", Quantity: 2, UnitPrice: "149.50"},
		},
	}
}

func TestCreateOrderComputesTotalNet(t *testing.T) {
	f := newOrderFixture(t)

	resp, err := f.service.CreateOrder(context.Background(), manualOrderRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "2798.00", resp.TotalNet)
	assert.Equal(t, model.OrderPending, resp.Status)
	require.Len(t, resp.Items, 2)
	assert.Contains(t, f.events.events, "order.created")
}

func TestCreateOrderAssignsMonthlySequentialCodes(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateOrder(ctx, manualOrderRequest(), "")
	require.NoError(t, err)
	second, err := f.service.CreateOrder(ctx, manualOrderRequest(), "")
	require.NoError(t, err)

	assert.Regexp(t, `^CMD-\d{6}-00001$`, first.OrderCode)
	assert.Regexp(t, `^CMD-\d{6}-00002$`, second.OrderCode)
}

func TestPartnerOrderRequiresRegisteredActivePartner(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	req := manualOrderRequest()
	req.Source = model.OrderSourcePartner

	_, err := f.service.CreateOrder(ctx, req, "")
	assert.ErrorIs(t, err, ErrValidation)

	req.PartnerEmail = "unknown@example.com"
	_, err = f.service.CreateOrder(ctx, req, "")
	assert.ErrorIs(t, err, ErrNotFound)

	f.seedPartner(t, "inactive@example.com", false)
	req.PartnerEmail = "inactive@example.com"
	_, err = f.service.CreateOrder(ctx, req, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	f.seedPartner(t, "active@example.com", true)
	req.PartnerEmail = "active@example.com"
	resp, err := f.service.CreateOrder(ctx, req, "")
	require.NoError(t, err)
	assert.Equal(t, "active@example.com", resp.PartnerEmail)
}

func TestUpdateStatusIsTerminal(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp, err := f.service.CreateOrder(ctx, manualOrderRequest(), "")
	require.NoError(t, err)

	completed, err := f.service.UpdateStatus(ctx, resp.ID.String(), model.OrderCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, completed.Status)

	_, err = f.service.UpdateStatus(ctx, resp.ID.String(), model.OrderCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.service.UpdateStatus(ctx, resp.ID.String(), "SHIPPED", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListOrdersFiltersBySource(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	f.seedPartner(t, "partner@example.com", true)

	_, err := f.service.CreateOrder(ctx, manualOrderRequest(), "")
	require.NoError(t, err)

	partnerReq := manualOrderRequest()
	partnerReq.Source = model.OrderSourcePartner
	partnerReq.PartnerEmail = "partner@example.com"
	_, err = f.service.CreateOrder(ctx, partnerReq, "")
	require.NoError(t, err)

	partnerOrders, total, err := f.service.GetOrders(ctx, OrderListQuery{Source: model.OrderSourcePartner})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, partnerOrders, 1)
	assert.Equal(t, "partner@example.com", partnerOrders[0].PartnerEmail)
}
