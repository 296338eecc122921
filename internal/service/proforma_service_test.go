package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() CreateProformaRequest {
	return CreateProformaRequest{
		ClientType:  model.ClientTypePF,
		ClientName:  "Ion Popescu",
		ClientEmail: "ion.popescu@example.com",
		Items: []ProformaItemPayload{
			{Name: "Canapea Oslo", Quantity: 1, UnitPrice: "2499.00"},
		},
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		resp, err := f.service.Create(ctx, sampleRequest(), "")
		require.NoError(t, err)
		assert.Equal(t, int64(i), resp.Number)
		assert.Equal(t, fmt.Sprintf("OTK-%05d", i), resp.FullNumber)
		assert.Equal(t, model.ProformaPending, resp.Status)
	}

	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), settings.ProformaCounter)
}

func TestConcurrentCreatesYieldDistinctSequentialNumbers(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	const writers = 6
	numbers := make(chan int64, writers)
	errs := make(chan error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.service.Create(ctx, sampleRequest(), "")
			if err != nil {
				errs <- err
				return
			}
			numbers <- resp.Number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	// Exactly the numbers 1..writers, each minted once.
	seen := make(map[int64]bool, writers)
	for n := range numbers {
		assert.False(t, seen[n], "number %d minted twice", n)
		seen[n] = true
	}
	for n := int64(1); n <= writers; n++ {
		assert.True(t, seen[n], "number %d missing from the sequence", n)
	}

	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), settings.ProformaCounter)
}

func TestCreateComputesDocumentTotals(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")

	req := sampleRequest()
	req.Items = []ProformaItemPayload{
		{Name: "Canapea Oslo", Quantity: 2, UnitPrice: "100.00"},
		{Name: "Taburet Riga", Quantity: 1, UnitPrice: "50.00"},
	}

	resp, err := f.service.Create(context.Background(), req, "")
	require.NoError(t, err)

	assert.Equal(t, "250.00", resp.SubtotalNoVAT)
	assert.Equal(t, "52.50", resp.TotalVAT)
	assert.Equal(t, "302.50", resp.TotalWithVAT)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "21.00", resp.Items[0].TaxRateValue)
}

func TestCreateRequiresDefaultRateWhenItemOmitsOne(t *testing.T) {
	f := newProformaFixture(t)
	// Active rate exists but none is flagged default.
	tr := f.seedDefaultRate(t, "21")
	tr.IsDefault = false
	require.NoError(t, f.taxRates.Update(context.Background(), tr))

	_, err := f.service.Create(context.Background(), sampleRequest(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateValidatesLegalEntityFields(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")

	req := sampleRequest()
	req.ClientType = model.ClientTypePJ
	req.ClientCUI = ""
	req.ClientRegCom = ""

	_, err := f.service.Create(context.Background(), req, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaxSnapshotSurvivesRateChange(t *testing.T) {
	f := newProformaFixture(t)
	rate := f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	// Legislative change: the rate drops to 19% after the document was issued.
	rate.Rate = d("19")
	require.NoError(t, f.taxRates.Update(ctx, rate))

	reloaded, err := f.service.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, "21.00", reloaded.Items[0].TaxRateValue)
	assert.Equal(t, resp.TotalWithVAT, reloaded.TotalWithVAT)
}

func TestStatusTransitionsAreOneWay(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	paid, err := f.service.ConfirmPayment(ctx, resp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.ProformaPaid, paid.Status)

	// Paid documents cannot be cancelled or re-confirmed.
	_, err = f.service.Cancel(ctx, resp.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.service.ConfirmPayment(ctx, resp.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteRefusesPaidDocuments(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	_, err = f.service.ConfirmPayment(ctx, resp.ID, "")
	require.NoError(t, err)

	err = f.service.Delete(ctx, resp.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Pending documents can be deleted.
	second, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, second.ID, ""))
	_, err = f.service.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletedNumberLeavesAGapByDesign(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	first, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, first.ID, ""))

	// The counter does not roll back; the next document gets the next number.
	second, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Number)
}

func TestDeleteRemovesLineItemsWithTheDocument(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, resp.ID, ""))

	var orphans int64
	require.NoError(t, f.db.Model(&model.ProformaItem{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestGeneratePDFNamesFileAfterFullNumber(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	data, filename, err := f.service.GeneratePDF(ctx, resp.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "Proforma-"+resp.FullNumber+".pdf", filename)
	assert.Equal(t, 1, f.renderer.calls)
}

func TestGeneratePDFFailureLeavesDocumentIntact(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	f.renderer.fail = true
	_, _, err = f.service.GeneratePDF(ctx, resp.ID)
	assert.ErrorIs(t, err, ErrRenderFailed)

	reloaded, err := f.service.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProformaPending, reloaded.Status)
	assert.Equal(t, resp.TotalWithVAT, reloaded.TotalWithVAT)
}

func TestSendEmailDefaultsToClientAddress(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	sent, err := f.service.SendEmail(ctx, resp.ID, "", "")
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, "ion.popescu@example.com", msg.To)
	assert.Contains(t, msg.Subject, resp.FullNumber)
	assert.NotEmpty(t, msg.Attachment)
	assert.Equal(t, "Proforma-"+resp.FullNumber+".pdf", msg.AttachmentName)

	assert.Equal(t, "ion.popescu@example.com", sent.EmailSentTo)
	assert.NotNil(t, sent.EmailSentAt)
}

func TestSendEmailFailureLeavesDocumentUnstamped(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	f.mailer.fail = true
	ctx := context.Background()

	resp, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)

	_, err = f.service.SendEmail(ctx, resp.ID, "", "")
	assert.ErrorIs(t, err, ErrMailFailed)

	reloaded, err := f.service.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.EmailSentTo)
	assert.Nil(t, reloaded.EmailSentAt)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")
	ctx := context.Background()

	first, err := f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	_, err = f.service.Create(ctx, sampleRequest(), "")
	require.NoError(t, err)
	_, err = f.service.ConfirmPayment(ctx, first.ID, "")
	require.NoError(t, err)

	paid, total, err := f.service.List(ctx, repository.ProformaListFilter{Status: model.ProformaPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, paid, 1)
	assert.Equal(t, first.FullNumber, paid[0].FullNumber)
}

func TestCreateBroadcastsEvent(t *testing.T) {
	f := newProformaFixture(t)
	f.seedDefaultRate(t, "21")

	_, err := f.service.Create(context.Background(), sampleRequest(), "")
	require.NoError(t, err)
	assert.Contains(t, f.events.events, "proforma.created")
}

func TestRenderTemplatePlaceholders(t *testing.T) {
	out := RenderTemplate("Proformă {number} — {company_name}", "OTK-00042", "Otka Mobilier SRL")
	assert.Equal(t, "Proformă OTK-00042 — Otka Mobilier SRL", out)
}
