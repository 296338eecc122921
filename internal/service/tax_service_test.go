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

type taxFixture struct {
	db      *gorm.DB
	service TaxRateService
	repo    repository.TaxRateRepository
}

func newTaxFixture(t *testing.T) *taxFixture {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewTaxRateRepository(db)
	svc := NewTaxRateService(repo, repository.NewAuditRepository(db), repository.NewTransactionManager(db))
	return &taxFixture{db: db, service: svc, repo: repo}
}

func TestCreateTaxRateValidatesBounds(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Bad", Rate: "101"}, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Create(ctx, CreateTaxRateRequest{Name: "Bad", Rate: "-1"}, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Create(ctx, CreateTaxRateRequest{Name: "Bad", Rate: "abc"}, "")
	assert.ErrorIs(t, err, ErrValidation)

	resp, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Zero", Rate: "0"}, "")
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.Rate)
	assert.True(t, resp.Active)
}

func TestSettingDefaultClearsPreviousDefault(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Standard", Rate: "21", IsDefault: true}, "")
	require.NoError(t, err)

	second, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Redus", Rate: "9", IsDefault: true}, "")
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	rates, err := f.service.List(ctx, false)
	require.NoError(t, err)

	defaults := 0
	for _, r := range rates {
		if r.IsDefault {
			defaults++
			assert.Equal(t, second.ID, r.ID)
		}
		if r.ID == first.ID {
			assert.False(t, r.IsDefault)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestUpdatePromotingToDefaultDemotesOthers(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Standard", Rate: "21", IsDefault: true}, "")
	require.NoError(t, err)
	second, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Redus", Rate: "9"}, "")
	require.NoError(t, err)

	makeDefault := true
	_, err = f.service.Update(ctx, second.ID, UpdateTaxRateRequest{IsDefault: &makeDefault}, "")
	require.NoError(t, err)

	rates, err := f.service.List(ctx, false)
	require.NoError(t, err)
	for _, r := range rates {
		assert.Equal(t, r.ID == second.ID, r.IsDefault)
	}
	_ = first
}

func TestDeleteReferencedRateIsRefused(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Standard", Rate: "21"}, "")
	require.NoError(t, err)

	rate, err := f.repo.FindByID(ctx, mustParse(t, resp.ID))
	require.NoError(t, err)

	product := model.Product{SKU: "OSLO-3S", Name: "Canapea Oslo", Price: d("2499.00"), TaxRateID: &rate.ID}
	require.NoError(t, f.db.Create(&product).Error)

	err = f.service.Delete(ctx, resp.ID, "")
	assert.ErrorIs(t, err, ErrConflict)

	// Still present after the refused delete.
	_, err = f.repo.FindByID(ctx, rate.ID)
	require.NoError(t, err)
}

func TestDeleteUnreferencedRateSucceeds(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	resp, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Obsolete", Rate: "5"}, "")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, resp.ID, ""))

	err = f.service.Delete(ctx, resp.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkReassignMovesProductsOnly(t *testing.T) {
	f := newTaxFixture(t)
	ctx := context.Background()

	oldResp, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Vechi", Rate: "19"}, "")
	require.NoError(t, err)
	newResp, err := f.service.Create(ctx, CreateTaxRateRequest{Name: "Nou", Rate: "21"}, "")
	require.NoError(t, err)

	oldID := mustParse(t, oldResp.ID)
	newID := mustParse(t, newResp.ID)

	for _, sku := range []string{"OSLO-3S", "RIGA-T1", "VILNIUS-B2"} {
		product := model.Product{SKU: sku, Name: sku, Price: d("100.00"), TaxRateID: &oldID}
		require.NoError(t, f.db.Create(&product).Error)
	}

	// A historical proforma item snapshot pointing at the old rate must not move.
	proforma := model.Proforma{
		Series: "OTK", Number: 1, FullNumber: "OTK-00001",
		ClientType: model.ClientTypePF, ClientName: "Ion", ClientEmail: "ion@example.com",
		Currency: model.CurrencyRON, Status: model.ProformaPending,
		Items: []model.ProformaItem{
			{Name: "Canapea Oslo", Quantity: 1, UnitPrice: d("100.00"),
				TaxRateID: &oldID, TaxRateValue: d("19"),
				Subtotal: d("100.00"), VATAmount: d("19.00"), Total: d("119.00")},
		},
	}
	require.NoError(t, f.db.Create(&proforma).Error)

	result, err := f.service.BulkReassign(ctx, oldResp.ID, newResp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ProductsUpdated)

	var moved int64
	require.NoError(t, f.db.Model(&model.Product{}).Where("tax_rate_id = ?", newID).Count(&moved).Error)
	assert.Equal(t, int64(3), moved)

	var frozen int64
	require.NoError(t, f.db.Model(&model.ProformaItem{}).Where("tax_rate_id = ?", oldID).Count(&frozen).Error)
	assert.Equal(t, int64(1), frozen)
}

func TestBulkReassignRejectsIdenticalRates(t *testing.T) {
	f := newTaxFixture(t)

	resp, err := f.service.Create(context.Background(), CreateTaxRateRequest{Name: "Standard", Rate: "21"}, "")
	require.NoError(t, err)

	_, err = f.service.BulkReassign(context.Background(), resp.ID, resp.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}
