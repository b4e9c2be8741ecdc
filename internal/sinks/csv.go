package sinks

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"
)

// ResultsCSVSink writes extraction results to a single CSV file. In preview
// mode the content column is replaced by a fixed-length preview.
type ResultsCSVSink struct {
	path    string
	preview bool
}

var _ interfaces.ResultSink = (*ResultsCSVSink)(nil)

func NewResultsCSVSink(path string, preview bool) *ResultsCSVSink {
	return &ResultsCSVSink{path: path, preview: preview}
}

func (s *ResultsCSVSink) Name() string {
	return "results-csv"
}

// Write renders one row per result, in input order. Failed extractions keep
// their row with an empty content column so indexes stay aligned with the
// request.
func (s *ResultsCSVSink) Write(_ context.Context, results []models.ExtractionResult) error {
	f, err := createFile(s.path)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)

	header := []string{"index", "file_name", "status", "content_length", "content"}
	if s.preview {
		header[4] = "content_preview"
	}

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, result := range results {
		name := result.FileName
		if name == "" {
			name = "Unknown"
		}

		content := result.Content
		if s.preview {
			content = result.Preview()
		}

		row := []string{
			strconv.Itoa(i + 1),
			name,
			result.Status,
			strconv.Itoa(result.ContentLength()),
			content,
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()

	return w.Error()
}

// listingHeader names the columns of listing exports, shared by the CSV and
// XLSX sinks.
var listingHeader = []string{
	"File Name", "File ID", "File Type", "Created", "Modified",
	"Size", "Size (bytes)", "Link", "Owner", "Parent Folder ID", "Shared Drive ID",
}

// ListingCSVSink writes a file listing to a CSV file.
type ListingCSVSink struct {
	path string
}

var _ interfaces.ListingSink = (*ListingCSVSink)(nil)

func NewListingCSVSink(path string) *ListingCSVSink {
	return &ListingCSVSink{path: path}
}

func (s *ListingCSVSink) Name() string {
	return "listing-csv"
}

func (s *ListingCSVSink) WriteListing(_ context.Context, files []models.File) error {
	f, err := createFile(s.path)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)

	if err := w.Write(listingHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, file := range files {
		if err := w.Write(listingRow(file)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", file.ID, err)
		}
	}

	w.Flush()

	return w.Error()
}

// listingRow renders one file for a listing export.
func listingRow(file models.File) []string {
	sizeBytes := "N/A"
	if file.Size > 0 {
		sizeBytes = strconv.FormatInt(file.Size, 10)
	}

	owner := ""
	if len(file.Owners) > 0 {
		owner = file.Owners[0]
	}

	return []string{
		file.Name,
		file.ID,
		file.MimeType,
		formatTime(file.CreatedTime),
		formatTime(file.ModifiedTime),
		models.FormatSize(file.Size),
		sizeBytes,
		file.WebViewLink,
		owner,
		strings.Join(file.Parents, ","),
		file.DriveID,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

// createFile creates the file, making parent directories as needed.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, nil
}
