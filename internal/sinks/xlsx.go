package sinks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"

	"github.com/xuri/excelize/v2"
)

const listingSheet = "Files"

// ListingXLSXSink writes a file listing to an Excel workbook with a single
// sheet, mirroring the CSV listing columns.
type ListingXLSXSink struct {
	path string
}

var _ interfaces.ListingSink = (*ListingXLSXSink)(nil)

func NewListingXLSXSink(path string) *ListingXLSXSink {
	return &ListingXLSXSink{path: path}
}

func (s *ListingXLSXSink) Name() string {
	return "listing-xlsx"
}

func (s *ListingXLSXSink) WriteListing(_ context.Context, files []models.File) error {
	wb := excelize.NewFile()

	defer func() {
		_ = wb.Close()
	}()

	if err := wb.SetSheetName(wb.GetSheetName(0), listingSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeSheetRow(wb, 1, listingHeader); err != nil {
		return err
	}

	for i, file := range files {
		if err := writeSheetRow(wb, i+2, listingRow(file)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := wb.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSheetRow(wb *excelize.File, rowNum int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}

	if err := wb.SetSheetRow(listingSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}

	return nil
}
