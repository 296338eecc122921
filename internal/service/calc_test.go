package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		unitPrice    string
		rate         string
		wantSubtotal string
		wantVAT      string
		wantTotal    string
	}{
		{"standard rate", 2, "100.00", "21", "200.00", "42.00", "242.00"},
		{"zero rated", 1, "50.00", "0", "50.00", "0.00", "50.00"},
		{"free item", 3, "0", "19", "0.00", "0.00", "0.00"},
		{"fractional price", 1, "0.015", "19", "0.02", "0.00", "0.02"},
		{"rounding up", 1, "33.33", "19", "33.33", "6.33", "39.66"},
		{"large quantity", 250, "19.99", "9", "4997.50", "449.78", "5447.28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := ComputeLine(tt.quantity, d(tt.unitPrice), d(tt.rate))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubtotal, line.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantVAT, line.VATAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, line.Total.StringFixed(2))
		})
	}
}

func TestComputeLineRejectsInvalidInput(t *testing.T) {
	_, err := ComputeLine(0, d("10"), d("19"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeLine(-1, d("10"), d("19"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeLine(1, d("-0.01"), d("19"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeLine(1, d("10"), d("-1"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeLine(1, d("10"), d("101"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSumLinesAggregation(t *testing.T) {
	// Reference document: 2×100.00 @21% plus 1×50.00 @0%.
	first, err := ComputeLine(2, d("100.00"), d("21"))
	require.NoError(t, err)
	second, err := ComputeLine(1, d("50.00"), d("0"))
	require.NoError(t, err)

	totals := SumLines([]LineTotals{first, second})
	assert.Equal(t, "250.00", totals.SubtotalNoVAT.StringFixed(2))
	assert.Equal(t, "42.00", totals.TotalVAT.StringFixed(2))
	assert.Equal(t, "292.00", totals.TotalWithVAT.StringFixed(2))
}

func TestRoundingStabilityAcrossManyLines(t *testing.T) {
	// 1,000 lines of qty 1 × 0.015 @19%. Per-line rounding must not drift by
	// more than 0.01 from rounding the unrounded sum once at the end.
	lines := make([]LineTotals, 0, 1000)
	for i := 0; i < 1000; i++ {
		line, err := ComputeLine(1, d("0.015"), d("19"))
		require.NoError(t, err)
		lines = append(lines, line)
	}
	totals := SumLines(lines)

	// The stored per-line totals and the document totals must agree: rounding
	// happens once per line, never a second time at aggregation.
	lineSum := decimal.Zero
	for _, line := range lines {
		lineSum = lineSum.Add(line.Total)
	}
	drift := totals.TotalWithVAT.Sub(lineSum.Round(2)).Abs()
	assert.True(t, drift.LessThanOrEqual(d("0.01")),
		"drift %s exceeds 0.01", drift.String())

	// Invariant: subtotal + vat == total, exactly, for the aggregated document.
	assert.True(t, totals.SubtotalNoVAT.Add(totals.TotalVAT).Equal(totals.TotalWithVAT))
}
