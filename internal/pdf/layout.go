// Package pdf renders proforma invoices.
//
// Rendering is split in two stages. The layout stage (this file) turns a
// proforma into a fixed page plan: wrapped table rows distributed across
// pages, plus the header/footer text blocks. It is pure and deterministic,
// so the same proforma always produces the same plan. The drawing stage
// (renderer.go) walks the plan with Maroto and emits the actual PDF bytes.
package pdf

import (
	"fmt"
	"strings"

	"otka-backend/internal/model"
)

const (
	// Character budget for the description column before wrapping.
	descriptionWidth = 48
	// Table rows on the first page (header and client blocks take room).
	firstPageRows = 18
	// Table rows on every continuation page.
	nextPageRows = 30
)

// PartyBlock is a labelled block of identity lines (issuer or client).
type PartyBlock struct {
	Title string
	Name  string
	Lines []string
}

// TableLine is one printable table row. Continuation rows produced by
// wrapping a long description carry only the Description column.
type TableLine struct {
	Description  string
	Quantity     string
	UnitPrice    string
	TaxRate      string
	Total        string
	Continuation bool
}

// TotalsBlock is the label/value pairs printed under the table.
type TotalsBlock struct {
	Subtotal string
	VAT      string
	Total    string
	Currency string
}

// Page is one rendered page worth of table lines.
type Page struct {
	Lines []TableLine
}

// Layout is the full page plan for one proforma.
type Layout struct {
	Title      string
	FullNumber string
	IssueDate  string
	Issuer     PartyBlock
	Client     PartyBlock
	Banking    []string
	Pages      []Page
	Totals     TotalsBlock
	Terms      string
	Footer     string
}

// BuildLayout computes the page plan for a proforma.
func BuildLayout(p *model.Proforma, s *model.CompanySettings) Layout {
	layout := Layout{
		Title:      "FACTURĂ PROFORMĂ",
		FullNumber: p.FullNumber,
		IssueDate:  p.IssueDate.Format("02.01.2006"),
		Issuer:     issuerBlock(s),
		Client:     clientBlock(p),
		Banking:    bankingLines(p, s),
		Totals: TotalsBlock{
			Subtotal: p.SubtotalNoVAT.StringFixed(2),
			VAT:      p.TotalVAT.StringFixed(2),
			Total:    p.TotalWithVAT.StringFixed(2),
			Currency: p.Currency,
		},
		Terms:  s.TermsAndConditions,
		Footer: fmt.Sprintf("Document generat de %s. Proforma nu este document fiscal.", s.CompanyName),
	}

	lines := make([]TableLine, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, itemLines(item)...)
	}
	layout.Pages = paginate(lines)

	return layout
}

func issuerBlock(s *model.CompanySettings) PartyBlock {
	block := PartyBlock{Title: "FURNIZOR", Name: s.CompanyName}
	if s.CUI != "" {
		block.Lines = append(block.Lines, "CUI: "+s.CUI)
	}
	if s.RegCom != "" {
		block.Lines = append(block.Lines, "Reg. Com.: "+s.RegCom)
	}
	if s.Address != "" {
		block.Lines = append(block.Lines, joinNonEmpty(", ", s.Address, s.City, s.County))
	}
	if s.Phone != "" {
		block.Lines = append(block.Lines, "Tel: "+s.Phone)
	}
	if s.Email != "" {
		block.Lines = append(block.Lines, "Email: "+s.Email)
	}
	return block
}

func clientBlock(p *model.Proforma) PartyBlock {
	block := PartyBlock{Title: "CLIENT", Name: p.ClientName}
	if p.ClientType == model.ClientTypePJ {
		if p.ClientCUI != "" {
			block.Lines = append(block.Lines, "CUI: "+p.ClientCUI)
		}
		if p.ClientRegCom != "" {
			block.Lines = append(block.Lines, "Reg. Com.: "+p.ClientRegCom)
		}
	}
	if addr := joinNonEmpty(", ", p.ClientAddress, p.ClientCity, p.ClientCounty); addr != "" {
		block.Lines = append(block.Lines, addr)
	}
	if p.ClientPhone != "" {
		block.Lines = append(block.Lines, "Tel: "+p.ClientPhone)
	}
	block.Lines = append(block.Lines, "Email: "+p.ClientEmail)
	return block
}

func bankingLines(p *model.Proforma, s *model.CompanySettings) []string {
	var lines []string
	iban := s.IBANRon
	if p.Currency == model.CurrencyEUR && s.IBANEur != "" {
		iban = s.IBANEur
	}
	if iban != "" {
		lines = append(lines, fmt.Sprintf("IBAN (%s): %s", p.Currency, iban))
	}
	if s.BankName != "" {
		lines = append(lines, "Banca: "+s.BankName)
	}
	return lines
}

// itemLines turns one line item into its printable rows: the first row
// carries the amounts, wrapped description overflow follows as
// continuation rows.
func itemLines(item model.ProformaItem) []TableLine {
	label := item.Name
	if item.SKU != "" {
		label = fmt.Sprintf("[%s] %s", item.SKU, item.Name)
	}
	if item.Description != "" {
		label += " - " + item.Description
	}

	wrapped := wrapText(label, descriptionWidth)
	lines := []TableLine{{
		Description: wrapped[0],
		Quantity:    fmt.Sprintf("%d", item.Quantity),
		UnitPrice:   item.UnitPrice.StringFixed(2),
		TaxRate:     item.TaxRateValue.StringFixed(0) + "%",
		Total:       item.Total.StringFixed(2),
	}}
	for _, cont := range wrapped[1:] {
		lines = append(lines, TableLine{Description: cont, Continuation: true})
	}
	return lines
}

// wrapText splits text into lines of at most width characters, breaking on
// spaces greedily. A single word longer than width is hard-split on rune
// boundaries, so diacritics never end up cut in half.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	currentLen := 0
	for _, word := range words {
		runes := []rune(word)
		for len(runes) > width {
			if current != "" {
				lines = append(lines, current)
				current, currentLen = "", 0
			}
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		word = string(runes)
		switch {
		case current == "":
			current, currentLen = word, len(runes)
		case currentLen+1+len(runes) <= width:
			current += " " + word
			currentLen += 1 + len(runes)
		default:
			lines = append(lines, current)
			current, currentLen = word, len(runes)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// paginate distributes table lines across pages. Continuation rows never
// open a page: if a wrapped group would be split right after its first row,
// the whole group moves to the next page.
func paginate(lines []TableLine) []Page {
	if len(lines) == 0 {
		return []Page{{Lines: nil}}
	}

	var pages []Page
	budget := firstPageRows
	var current []TableLine

	i := 0
	for i < len(lines) {
		// A group is one item row plus its continuation rows.
		groupEnd := i + 1
		for groupEnd < len(lines) && lines[groupEnd].Continuation {
			groupEnd++
		}
		group := lines[i:groupEnd]

		if len(current)+len(group) > budget && len(current) > 0 {
			pages = append(pages, Page{Lines: current})
			current = nil
			budget = nextPageRows
		}

		// A group taller than a whole page has to split after all.
		for len(current)+len(group) > budget {
			take := budget - len(current)
			current = append(current, group[:take]...)
			group = group[take:]
			pages = append(pages, Page{Lines: current})
			current = nil
			budget = nextPageRows
		}

		current = append(current, group...)
		i = groupEnd
	}
	if len(current) > 0 {
		pages = append(pages, Page{Lines: current})
	}

	return pages
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
