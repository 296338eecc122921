package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"otka-backend/internal/model"
)

var (
	colorPrimary = &props.Color{Red: 31, Green: 56, Blue: 100}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Renderer draws proforma documents with Maroto v2. It implements
// service.ProformaRenderer.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render produces the PDF bytes for an issued proforma.
func (r *Renderer) Render(proforma *model.Proforma, settings *model.CompanySettings) ([]byte, error) {
	layout := BuildLayout(proforma, settings)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Proforma "+layout.FullNumber, true).
		WithAuthor(settings.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	for pageIdx, pg := range layout.Pages {
		if pageIdx > 0 {
			m.AddPages(page.New())
			m.AddRows(continuationHeaderRow(layout))
		} else {
			m.AddRows(headerRow(layout))
			m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
			m.AddRows(partiesRow(layout))
			m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		}

		m.AddRows(tableHeaderRow())
		for _, tl := range pg.Lines {
			m.AddRows(tableLineRow(tl))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(layout.Totals))

	if len(layout.Banking) > 0 {
		m.AddRows(textBlockRows("DETALII PLATĂ", layout.Banking)...)
	}
	if layout.Terms != "" {
		m.AddRows(textBlockRows("TERMENI ȘI CONDIȚII", wrapText(layout.Terms, 110))...)
	}

	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New(layout.Footer, props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(layout Layout) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(layout.Issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(layout.Title, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(layout.FullNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Data: "+layout.IssueDate, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func continuationHeaderRow(layout Layout) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("%s (continuare)", layout.FullNumber), props.Text{
				Style: fontstyle.Bold, Size: 9, Color: colorGray, Top: 1,
			}),
		),
	)
}

func partiesRow(layout Layout) core.Row {
	height := 10 + 5*maxInt(len(layout.Issuer.Lines), len(layout.Client.Lines))

	buildCol := func(block PartyBlock) core.Col {
		c := col.New(6).Add(
			text.New(block.Title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(block.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		)
		top := 10.0
		for _, l := range block.Lines {
			c.Add(text.New(l, props.Text{Size: 8, Top: top, Color: colorGray}))
			top += 5
		}
		return c
	}

	return row.New(float64(height)).Add(buildCol(layout.Issuer), buildCol(layout.Client))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Denumire produs / serviciu", 6, align.Left),
		h("Cant.", 1, align.Center),
		h("Preț unitar", 2, align.Right),
		h("TVA", 1, align.Center),
		h("Total", 2, align.Right),
	)
}

func tableLineRow(tl TableLine) core.Row {
	if tl.Continuation {
		return row.New(5).Add(
			col.New(6).Add(text.New(tl.Description, props.Text{Size: 8, Left: 2, Top: 0.5})),
			col.New(6),
		)
	}
	return row.New(7).Add(
		col.New(6).Add(text.New(tl.Description, props.Text{Size: 8, Top: 1})),
		col.New(1).Add(text.New(tl.Quantity, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(tl.UnitPrice, props.Text{Size: 8, Align: align.Right, Top: 1})),
		col.New(1).Add(text.New(tl.TaxRate, props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(tl.Total, props.Text{Size: 8, Align: align.Right, Top: 1})),
	)
}

func totalsRow(totals TotalsBlock) core.Row {
	// Each line needs its own vertical offset, same stacking as headerRow.
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Top: top})
	}

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal (fără TVA):", 0),
			label("Total TVA:", 6),
			text.New("TOTAL DE PLATĂ:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12,
			}),
		),
		col.New(3).Add(
			value(totals.Subtotal+" "+totals.Currency, 0),
			value(totals.VAT+" "+totals.Currency, 6),
			text.New(totals.Total+" "+totals.Currency, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 12,
			}),
		),
	)
}

func textBlockRows(title string, lines []string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		)),
	}
	for _, l := range lines {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(l, props.Text{Size: 7.5, Color: colorGray, Top: 0.5}),
		)))
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
