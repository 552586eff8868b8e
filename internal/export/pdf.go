// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontFamily = "Helvetica"
	pdfRowHeight  = 6.0
)

// WritePDF renders t as a landscape A4 report with a repeated header row.
func WritePDF(w io.Writer, t Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("ocms-admin", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFontFamily, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(t, pageWidth-left-right)

	header := func() {
		pdf.SetFont(pdfFontFamily, "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range t.Headers {
			pdf.CellFormat(widths[i], pdfRowHeight+1, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFontFamily, "", 8)
	}

	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "B", 14)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom-15 {
			pdf.AddPage()
			header()
		}
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = fit(pdf, tr(row[i]), widths[i]-2)
			}
			pdf.CellFormat(widths[i], pdfRowHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(t.Rows) == 0 {
		pdf.CellFormat(0, pdfRowHeight, "No records", "1", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building PDF: %w", err)
	}
	return pdf.Output(w)
}

// columnWidths splits total across columns in proportion to the longest
// cell of each, capped at 40 characters.
func columnWidths(t Table, total float64) []float64 {
	n := len(t.Headers)
	if n == 0 {
		return nil
	}

	lengths := make([]float64, n)
	var sum float64
	for i, h := range t.Headers {
		longest := len(h)
		for _, row := range t.Rows {
			if i < len(row) && len(row[i]) > longest {
				longest = len(row[i])
			}
		}
		lengths[i] = float64(max(min(longest, 40), 1))
		sum += lengths[i]
	}

	widths := make([]float64, n)
	for i := range widths {
		widths[i] = total * lengths[i] / sum
	}
	return widths
}

// fit truncates s with an ellipsis so it fits width at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
