package drive

import (
	"context"
	"fmt"
	"log/slog"

	"drive-harvest/pkg/models"
)

// Output format constants.
const (
	FormatTXT = "txt"
	FormatMD  = "md"
)

// documentSource is the slice of the Drive surface the extractor needs.
type documentSource interface {
	GetFileMetadata(fileID string) (*models.File, error)
	ExportAsString(fileID, exportMimeType string, convertToMarkdown bool) (string, error)
}

var _ documentSource = (*Service)(nil)

// Extractor pulls text content out of Google Workspace files.
type Extractor struct {
	source documentSource
	format string
}

// NewExtractor builds an extractor that renders document content in the
// given format: "txt" (the default) or "md".
func NewExtractor(source documentSource, format string) (*Extractor, error) {
	if format == "" {
		format = FormatTXT
	}

	if format != FormatTXT && format != FormatMD {
		return nil, fmt.Errorf("unsupported output format %q (supported: txt, md)", format)
	}

	return &Extractor{source: source, format: format}, nil
}

// exportTarget decides how to export a file of the given MIME type: which
// MIME type to request and whether the response needs HTML-to-Markdown
// conversion. Docs export as plain text, or as HTML when markdown output is
// wanted; Sheets always export as CSV. Everything else is unsupported.
func exportTarget(mimeType, format string) (exportMime string, toMarkdown bool, err error) {
	switch mimeType {
	case MimeTypeGoogleDoc:
		if format == FormatMD {
			return MimeTypeHTML, true, nil
		}

		return MimeTypePlainText, false, nil
	case MimeTypeGoogleSheet:
		return MimeTypeCSV, false, nil
	default:
		return "", false, fmt.Errorf("unsupported type: %s", mimeType)
	}
}

// Extract fetches one file's metadata and content. It never returns an
// error; failures land in the result's Status and ErrorDetail so a batch
// can keep going.
func (e *Extractor) Extract(fileID string) models.ExtractionResult {
	meta, err := e.source.GetFileMetadata(fileID)
	if err != nil {
		return models.ExtractionResult{
			FileID:      fileID,
			Status:      models.StatusFailure,
			ErrorDetail: fmt.Sprintf("metadata lookup failed: %v", err),
		}
	}

	result := models.ExtractionResult{
		FileID:   fileID,
		FileName: meta.Name,
		MimeType: meta.MimeType,
	}

	exportMime, toMarkdown, err := exportTarget(meta.MimeType, e.format)
	if err != nil {
		result.Status = models.StatusFailure
		result.ErrorDetail = err.Error()

		return result
	}

	content, err := e.source.ExportAsString(fileID, exportMime, toMarkdown)
	if err != nil {
		result.Status = models.StatusFailure
		result.ErrorDetail = fmt.Sprintf("export failed: %v", err)

		return result
	}

	result.Status = models.StatusSuccess
	result.Content = content

	return result
}

// ExtractAll extracts every file in order. The returned slice always has one
// result per input ID, in input order; cancelling the context marks the
// remaining files failed instead of shortening the batch.
func (e *Extractor) ExtractAll(ctx context.Context, fileIDs []string) []models.ExtractionResult {
	results := make([]models.ExtractionResult, 0, len(fileIDs))

	for i, fileID := range fileIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, models.ExtractionResult{
				FileID:      fileID,
				Status:      models.StatusFailure,
				ErrorDetail: fmt.Sprintf("batch cancelled: %v", err),
			})

			continue
		}

		slog.Debug("extracting file", "index", i+1, "total", len(fileIDs), "file_id", fileID)

		results = append(results, e.Extract(fileID))
	}

	return results
}
