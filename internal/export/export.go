// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package export writes subscriber lists as CSV files and PDF reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/olegiv/ocms-admin/internal/model"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Table is a titled grid of text cells.
type Table struct {
	Title    string
	Filename string // without extension
	Headers  []string
	Rows     [][]string
}

// FileName returns the download name for format.
func (t Table) FileName(format string) string {
	return t.Filename + "." + format
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Registrations builds the event subscribers table.
func Registrations(items []model.Registration) Table {
	t := Table{
		Title:    "Event Subscribers",
		Filename: "event_subscribers",
		Headers: []string{
			"Full Name", "Email", "Phone Number", "Subscription Date",
			"School/Institution", "Event", "Status",
		},
		Rows: make([][]string, 0, len(items)),
	}
	for _, r := range items {
		date := ""
		if !r.RegisteredAt.IsZero() {
			date = r.RegisteredAt.Format("2006-01-02 15:04")
		}
		t.Rows = append(t.Rows, []string{
			r.FullName(), r.Email, r.Phone, date, r.School, r.Event, r.Status,
		})
	}
	return t
}

// Subscribers builds the newsletter subscribers table.
func Subscribers(items []model.Subscriber) Table {
	t := Table{
		Title:    "Newsletter Subscribers",
		Filename: "newsletter_subscribers",
		Headers:  []string{"Name", "Email", "Subscription Date", "Status", "Source"},
		Rows:     make([][]string, 0, len(items)),
	}
	for _, s := range items {
		t.Rows = append(t.Rows, []string{s.Name, s.Email, s.SubscriptionDate, s.Status, s.Source})
	}
	return t
}

// Write renders t in the given format.
func Write(w io.Writer, t Table, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatPDF:
		return WritePDF(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes the header row followed by every data row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		safe := make([]string, len(row))
		for i, cell := range row {
			safe[i] = neutralizeFormula(cell)
		}
		if err := cw.Write(safe); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// neutralizeFormula prefixes cells that spreadsheets would evaluate.
func neutralizeFormula(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
