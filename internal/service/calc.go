package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Line item arithmetic for proforma documents.
//
// Rounding policy: every line is rounded to 2 decimals BEFORE summing, and
// document totals are plain sums of the rounded lines. This keeps the printed
// lines and the printed totals consistent with each other and prevents
// fractional drift from compounding across long documents.

// LineTotals holds the computed amounts for a single line item.
type LineTotals struct {
	Subtotal  decimal.Decimal // quantity × unit price, rounded
	VATAmount decimal.Decimal // subtotal × rate/100, rounded
	Total     decimal.Decimal // subtotal + vat
}

// DocumentTotals aggregates line totals across a document.
type DocumentTotals struct {
	SubtotalNoVAT decimal.Decimal
	TotalVAT      decimal.Decimal
	TotalWithVAT  decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine computes subtotal, VAT and total for one line item.
// Quantity must be a positive integer. A zero unit price (promotional item)
// and a zero rate (zero-rated item) are both valid.
func ComputeLine(quantity int, unitPrice, taxRateValue decimal.Decimal) (LineTotals, error) {
	if quantity <= 0 {
		return LineTotals{}, fmt.Errorf("%w: quantity must be a positive integer, got %d", ErrValidation, quantity)
	}
	if unitPrice.IsNegative() {
		return LineTotals{}, fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	if taxRateValue.IsNegative() || taxRateValue.GreaterThan(oneHundred) {
		return LineTotals{}, fmt.Errorf("%w: tax rate must be between 0 and 100", ErrValidation)
	}

	subtotal := round2(decimal.NewFromInt(int64(quantity)).Mul(unitPrice))
	vat := round2(subtotal.Mul(taxRateValue).Div(oneHundred))

	return LineTotals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}, nil
}

// SumLines aggregates already-rounded line totals into document totals.
func SumLines(lines []LineTotals) DocumentTotals {
	totals := DocumentTotals{
		SubtotalNoVAT: decimal.Zero,
		TotalVAT:      decimal.Zero,
	}
	for _, line := range lines {
		totals.SubtotalNoVAT = totals.SubtotalNoVAT.Add(line.Subtotal)
		totals.TotalVAT = totals.TotalVAT.Add(line.VATAmount)
	}
	totals.TotalWithVAT = totals.SubtotalNoVAT.Add(totals.TotalVAT)
	return totals
}
