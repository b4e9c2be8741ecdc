package sinks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"drive-harvest/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestListingXLSXSink_WritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "listing.xlsx")

	created := time.Date(2025, 11, 12, 8, 30, 0, 0, time.UTC)
	files := []models.File{
		{
			ID:           "f1",
			Name:         "Launch plan",
			MimeType:     "application/vnd.google-apps.document",
			CreatedTime:  created,
			ModifiedTime: created.Add(time.Hour),
			Size:         2048,
			WebViewLink:  "https://docs.google.com/document/d/f1/edit",
			Owners:       []string{"Ada Lovelace"},
			Parents:      []string{"folder1"},
			DriveID:      "shared1",
		},
		{ID: "f2", Name: "Untitled"},
	}

	sink := NewListingXLSXSink(path)
	require.NoError(t, sink.WriteListing(context.Background(), files))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)

	defer wb.Close()

	assert.Equal(t, []string{"Files"}, wb.GetSheetList())

	cell := func(ref string) string {
		t.Helper()

		value, err := wb.GetCellValue(listingSheet, ref)
		require.NoError(t, err)

		return value
	}

	assert.Equal(t, "File Name", cell("A1"))
	assert.Equal(t, "Shared Drive ID", cell("K1"))

	assert.Equal(t, "Launch plan", cell("A2"))
	assert.Equal(t, "f1", cell("B2"))
	assert.Equal(t, "2025-11-12T08:30:00Z", cell("D2"))
	assert.Equal(t, "2.00 KB", cell("F2"))
	assert.Equal(t, "2048", cell("G2"))
	assert.Equal(t, "Ada Lovelace", cell("I2"))
	assert.Equal(t, "shared1", cell("K2"))

	assert.Equal(t, "Untitled", cell("A3"))
	assert.Equal(t, "N/A", cell("F3"))
	assert.Equal(t, "N/A", cell("G3"))
}

func TestListingXLSXSink_EmptyListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.xlsx")

	sink := NewListingXLSXSink(path)
	require.NoError(t, sink.WriteListing(context.Background(), nil))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)

	defer wb.Close()

	value, err := wb.GetCellValue(listingSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "File Name", value)
}
