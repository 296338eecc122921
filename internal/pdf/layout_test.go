package pdf

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otka-backend/internal/model"
)

func sampleSettings() *model.CompanySettings {
	return &model.CompanySettings{
		ID:             model.SettingsID,
		CompanyName:    "Otka Mobilier SRL",
		CUI:            "RO12345678",
		RegCom:         "J40/1234/2015",
		Address:        "Str. Fabricii 10",
		City:           "București",
		IBANRon:        "RO49AAAA1B31007593840000",
		IBANEur:        "RO49AAAA1B31007593840001",
		BankName:       "Banca Transilvania",
		ProformaSeries: "OTK",
	}
}

func sampleProforma(items []model.ProformaItem) *model.Proforma {
	return &model.Proforma{
		Series:        "OTK",
		Number:        42,
		FullNumber:    "OTK-00042",
		IssueDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		ClientType:    model.ClientTypePJ,
		ClientName:    "Mobexpert Retail SA",
		ClientCUI:     "RO987654",
		ClientEmail:   "achizitii@example.ro",
		Currency:      model.CurrencyRON,
		SubtotalNoVAT: decimal.RequireFromString("250.00"),
		TotalVAT:      decimal.RequireFromString("52.50"),
		TotalWithVAT:  decimal.RequireFromString("302.50"),
		Status:        model.ProformaPending,
		Items:         items,
	}
}

func item(name string, qty int, price, rate string) model.ProformaItem {
	unitPrice := decimal.RequireFromString(price)
	rateVal := decimal.RequireFromString(rate)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
	vat := subtotal.Mul(rateVal).Div(decimal.NewFromInt(100)).Round(2)
	return model.ProformaItem{
		Name:         name,
		Quantity:     qty,
		UnitPrice:    unitPrice,
		TaxRateValue: rateVal,
		Subtotal:     subtotal,
		VATAmount:    vat,
		Total:        subtotal.Add(vat),
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "canapea extensibilă", 48, []string{"canapea extensibilă"}},
		{"breaks on spaces", "one two three four", 9, []string{"one two", "three", "four"}},
		{"hard splits long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"hard splits on rune boundaries", "țățățăță", 3, []string{"țăț", "ăță", "ță"}},
		{"collapses whitespace", "a   b\t c", 10, []string{"a b c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			for _, line := range got {
				assert.LessOrEqual(t, utf8.RuneCountInString(line), tt.width)
				assert.True(t, utf8.ValidString(line))
			}
		})
	}
}

func TestBuildLayoutIsDeterministic(t *testing.T) {
	proforma := sampleProforma([]model.ProformaItem{
		item("Canapea 3 locuri", 2, "100.00", "21"),
		item("Livrare", 1, "50.00", "0"),
	})
	settings := sampleSettings()

	first := BuildLayout(proforma, settings)
	second := BuildLayout(proforma, settings)
	assert.Equal(t, first, second)
}

func TestBuildLayoutHeaderAndTotals(t *testing.T) {
	proforma := sampleProforma([]model.ProformaItem{
		item("Canapea 3 locuri", 2, "100.00", "21"),
	})
	layout := BuildLayout(proforma, sampleSettings())

	assert.Equal(t, "OTK-00042", layout.FullNumber)
	assert.Equal(t, "14.03.2026", layout.IssueDate)
	assert.Equal(t, "Otka Mobilier SRL", layout.Issuer.Name)
	assert.Equal(t, "Mobexpert Retail SA", layout.Client.Name)
	assert.Contains(t, layout.Client.Lines, "CUI: RO987654")

	assert.Equal(t, "250.00", layout.Totals.Subtotal)
	assert.Equal(t, "52.50", layout.Totals.VAT)
	assert.Equal(t, "302.50", layout.Totals.Total)
	assert.Equal(t, "RON", layout.Totals.Currency)

	// RON proforma advertises the RON account.
	require.NotEmpty(t, layout.Banking)
	assert.Contains(t, layout.Banking[0], "RO49AAAA1B31007593840000")
}

func TestBuildLayoutEURSelectsEURAccount(t *testing.T) {
	proforma := sampleProforma(nil)
	proforma.Currency = model.CurrencyEUR
	layout := BuildLayout(proforma, sampleSettings())

	require.NotEmpty(t, layout.Banking)
	assert.Contains(t, layout.Banking[0], "RO49AAAA1B31007593840001")
}

func TestLayoutWrapsLongDescriptions(t *testing.T) {
	long := strings.Repeat("modul colțar tapițat ", 8)
	proforma := sampleProforma([]model.ProformaItem{item(long, 1, "10.00", "21")})

	layout := BuildLayout(proforma, sampleSettings())
	require.Len(t, layout.Pages, 1)
	lines := layout.Pages[0].Lines
	require.Greater(t, len(lines), 1)

	// Amounts live on the first row only.
	assert.Equal(t, "1", lines[0].Quantity)
	assert.False(t, lines[0].Continuation)
	for _, cont := range lines[1:] {
		assert.True(t, cont.Continuation)
		assert.Empty(t, cont.Total)
	}
}

func TestLayoutPaginatesManyItems(t *testing.T) {
	items := make([]model.ProformaItem, 0, 60)
	for i := 0; i < 60; i++ {
		items = append(items, item("Scaun tapițat", 1, "10.00", "21"))
	}
	layout := BuildLayout(sampleProforma(items), sampleSettings())

	require.Greater(t, len(layout.Pages), 1)
	assert.LessOrEqual(t, len(layout.Pages[0].Lines), firstPageRows)
	for _, pg := range layout.Pages[1:] {
		assert.LessOrEqual(t, len(pg.Lines), nextPageRows)
	}

	// Every item row survives pagination.
	total := 0
	for _, pg := range layout.Pages {
		total += len(pg.Lines)
	}
	assert.Equal(t, 60, total)
}

func TestLayoutEmptyItemsStillYieldsOnePage(t *testing.T) {
	layout := BuildLayout(sampleProforma(nil), sampleSettings())
	require.Len(t, layout.Pages, 1)
	assert.Empty(t, layout.Pages[0].Lines)
}
