package sinks

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"
)

// SplitCSVSink writes each successful result to its own CSV file inside a
// directory, named <index>_<sanitized name>.csv. Failed extractions are
// skipped but still consume their index, so file numbering matches the
// combined output.
type SplitCSVSink struct {
	dir string
}

var _ interfaces.ResultSink = (*SplitCSVSink)(nil)

func NewSplitCSVSink(dir string) *SplitCSVSink {
	return &SplitCSVSink{dir: dir}
}

func (s *SplitCSVSink) Name() string {
	return "split-csv"
}

func (s *SplitCSVSink) Write(_ context.Context, results []models.ExtractionResult) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, result := range results {
		if !result.Succeeded() {
			slog.Warn("skipping failed extraction",
				"file_id", result.FileID, "file_name", result.FileName, "detail", result.ErrorDetail)

			continue
		}

		path := filepath.Join(s.dir, fmt.Sprintf("%d_%s.csv", i+1, sanitizeFilename(result.FileName)))
		if err := writeResultFile(path, result); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

func writeResultFile(path string, result models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)

	rows := [][]string{
		{"file_name", result.FileName},
		{"content_length", strconv.Itoa(result.ContentLength())},
		{},
		{"content"},
		{result.Content},
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// sanitizeFilename makes a Drive file name safe to use on disk.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

	return replacer.Replace(name)
}
