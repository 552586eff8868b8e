// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-admin/internal/model"
)

func TestRegistrationsCSV(t *testing.T) {
	table := Registrations([]model.Registration{
		{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			Phone:        "+44 20 7946 0000",
			School:       "Analytical College",
			Event:        "Spring Summit",
			Status:       "confirmed",
			RegisteredAt: time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC),
		},
		{Name: "Single, Name", Email: "s@example.com"},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Full Name,Email,Phone Number,Subscription Date,School/Institution,Event,Status", lines[0])

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Ada Lovelace", "ada@example.com", "'+44 20 7946 0000", "2025-03-01 10:15",
		"Analytical College", "Spring Summit", "confirmed",
	}, rows[1])
	assert.Equal(t, "Single, Name", rows[2][0])
	assert.Equal(t, "event_subscribers.csv", table.FileName(FormatCSV))
}

func TestSubscribersCSV(t *testing.T) {
	table := Subscribers([]model.Subscriber{
		{Name: "Bea", Email: "bea@example.com", SubscriptionDate: "2025-02-02", Status: "active", Source: "footer"},
		{Name: "=HYPERLINK(\"x\")", Email: "evil@example.com"},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table, FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Email", "Subscription Date", "Status", "Source"}, rows[0])
	assert.Equal(t, []string{"Bea", "bea@example.com", "2025-02-02", "active", "footer"}, rows[1])
	assert.True(t, strings.HasPrefix(rows[2][0], "'="))
	assert.Equal(t, "newsletter_subscribers.pdf", table.FileName(FormatPDF))
}

func TestWritePDF(t *testing.T) {
	items := make([]model.Subscriber, 120)
	for i := range items {
		items[i] = model.Subscriber{Name: "Zoë Subscriber", Email: "z@example.com", Status: "active"}
	}

	for _, table := range []Table{Subscribers(items), Registrations(nil)} {
		t.Run(table.Title, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, table, FormatPDF))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output is not a PDF")
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Subscribers(nil), "xlsx"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
}
