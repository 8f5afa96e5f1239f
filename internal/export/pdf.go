package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"cassa/internal/report"
)

const (
	pageMargin = 14.0
	rowHeight  = 7.0
)

var headerFill = [3]int{0, 123, 255}

// WritePDF lays the document out on A4 pages: title, generation date, then
// each section as a table. Sections flagged NewPage start a fresh page.
func WritePDF(w io.Writer, doc report.Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, 20, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdfText(pdf)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(doc.GeneratedOn), "", 1, "C", false, 0, "")

	for _, s := range doc.Sections {
		if s.NewPage {
			pdf.AddPage()
		} else {
			pdf.Ln(6)
		}
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(s.Title), "", 1, "L", false, 0, "")
		writeTable(pdf, tr, s.Table)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, t report.Table) {
	cols := len(t.Header)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return
	}
	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(cols)

	fontSize := 10.0
	if cols > 4 {
		fontSize = 8
	}

	if len(t.Header) > 0 {
		pdf.SetFont("Helvetica", "B", fontSize)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		for _, h := range t.Header {
			pdf.CellFormat(colW, rowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetFillColor(240, 240, 240)
	for i, row := range t.Rows {
		for j := 0; j < cols; j++ {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			pdf.CellFormat(colW, rowHeight, tr(truncate(cell, 48)), "1", 0, "L", i%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
}

// pdfText maps UTF-8 to the core fonts' cp1252. The rupee sign has no
// cp1252 glyph and is spelled out.
func pdfText(pdf *fpdf.Fpdf) func(string) string {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(s string) string {
		return tr(strings.ReplaceAll(s, "₹", "Rs."))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
