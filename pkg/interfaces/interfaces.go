package interfaces

import (
	"context"

	"drive-harvest/pkg/models"
)

// ResultSink is any destination that can receive extraction results
// (combined CSV file, per-file CSV directory, etc.).
type ResultSink interface {
	Name() string
	Write(ctx context.Context, results []models.ExtractionResult) error
}

// ListingSink is any destination that can receive a file listing from a
// search (CSV file, XLSX workbook, etc.).
type ListingSink interface {
	Name() string
	WriteListing(ctx context.Context, files []models.File) error
}
