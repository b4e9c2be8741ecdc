package drive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"drive-harvest/pkg/models"
)

type exportCall struct {
	fileID     string
	exportMime string
	toMarkdown bool
}

type fakeSource struct {
	metadata  map[string]*models.File
	content   map[string]string
	metaErr   map[string]error
	exportErr map[string]error

	exportCalls []exportCall
}

func (f *fakeSource) GetFileMetadata(fileID string) (*models.File, error) {
	if err := f.metaErr[fileID]; err != nil {
		return nil, err
	}

	meta, ok := f.metadata[fileID]
	if !ok {
		return nil, errors.New("googleapi: Error 404: file not found")
	}

	return meta, nil
}

func (f *fakeSource) ExportAsString(fileID, exportMimeType string, convertToMarkdown bool) (string, error) {
	f.exportCalls = append(f.exportCalls, exportCall{fileID, exportMimeType, convertToMarkdown})

	if err := f.exportErr[fileID]; err != nil {
		return "", err
	}

	return f.content[fileID], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		metadata: map[string]*models.File{
			"doc1":   {ID: "doc1", Name: "Launch plan", MimeType: MimeTypeGoogleDoc},
			"sheet1": {ID: "sheet1", Name: "Budget", MimeType: MimeTypeGoogleSheet},
			"pdf1":   {ID: "pdf1", Name: "scan.pdf", MimeType: "application/pdf"},
		},
		content: map[string]string{
			"doc1":   "launch plan body",
			"sheet1": "a,b\n1,2\n",
		},
		metaErr:   map[string]error{},
		exportErr: map[string]error{},
	}
}

func TestExtractDocAsPlainText(t *testing.T) {
	source := newFakeSource()

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("doc1")

	if !result.Succeeded() {
		t.Fatalf("Extract(doc1) status = %q (%s), want success", result.Status, result.ErrorDetail)
	}

	if result.Content != "launch plan body" || result.FileName != "Launch plan" {
		t.Errorf("Extract(doc1) = %+v, want exported content and file name", result)
	}

	want := exportCall{"doc1", MimeTypePlainText, false}
	if len(source.exportCalls) != 1 || source.exportCalls[0] != want {
		t.Errorf("export calls = %v, want %v", source.exportCalls, want)
	}
}

func TestExtractDocAsMarkdown(t *testing.T) {
	source := newFakeSource()

	extractor, err := NewExtractor(source, FormatMD)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("doc1")

	if !result.Succeeded() {
		t.Fatalf("Extract(doc1) status = %q (%s), want success", result.Status, result.ErrorDetail)
	}

	want := exportCall{"doc1", MimeTypeHTML, true}
	if len(source.exportCalls) != 1 || source.exportCalls[0] != want {
		t.Errorf("export calls = %v, want HTML export with markdown conversion", source.exportCalls)
	}
}

func TestExtractSheetAsCSV(t *testing.T) {
	source := newFakeSource()

	// Markdown output only affects Docs; Sheets still export as CSV.
	extractor, err := NewExtractor(source, FormatMD)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("sheet1")

	if !result.Succeeded() {
		t.Fatalf("Extract(sheet1) status = %q (%s), want success", result.Status, result.ErrorDetail)
	}

	want := exportCall{"sheet1", MimeTypeCSV, false}
	if len(source.exportCalls) != 1 || source.exportCalls[0] != want {
		t.Errorf("export calls = %v, want %v", source.exportCalls, want)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	source := newFakeSource()

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("pdf1")

	if result.Succeeded() {
		t.Fatal("Extract(pdf1) succeeded, want failure for unsupported type")
	}

	if result.ErrorDetail != "unsupported type: application/pdf" {
		t.Errorf("Extract(pdf1) detail = %q, want unsupported type message", result.ErrorDetail)
	}

	if result.FileName != "scan.pdf" {
		t.Errorf("Extract(pdf1) FileName = %q, want metadata carried onto the failure", result.FileName)
	}

	if len(source.exportCalls) != 0 {
		t.Errorf("export calls = %v, want none for an unsupported type", source.exportCalls)
	}
}

func TestExtractMetadataFailure(t *testing.T) {
	source := newFakeSource()
	source.metaErr["doc1"] = errors.New("googleapi: Error 403: rate limit")

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("doc1")

	if result.Succeeded() {
		t.Fatal("Extract(doc1) succeeded, want failure when metadata lookup fails")
	}

	if result.FileID != "doc1" {
		t.Errorf("Extract(doc1) FileID = %q, want the input ID preserved", result.FileID)
	}

	if !strings.Contains(result.ErrorDetail, "metadata lookup failed") {
		t.Errorf("Extract(doc1) detail = %q, want metadata failure message", result.ErrorDetail)
	}
}

func TestExtractExportFailure(t *testing.T) {
	source := newFakeSource()
	source.exportErr["doc1"] = errors.New("googleapi: Error 500: backend error")

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	result := extractor.Extract("doc1")

	if result.Succeeded() {
		t.Fatal("Extract(doc1) succeeded, want failure when export fails")
	}

	if !strings.Contains(result.ErrorDetail, "export failed") {
		t.Errorf("Extract(doc1) detail = %q, want export failure message", result.ErrorDetail)
	}
}

func TestExtractAllKeepsOrderAndLength(t *testing.T) {
	source := newFakeSource()

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	ids := []string{"doc1", "missing", "pdf1", "sheet1"}
	results := extractor.ExtractAll(context.Background(), ids)

	if len(results) != len(ids) {
		t.Fatalf("ExtractAll() returned %d results, want %d", len(results), len(ids))
	}

	for i, id := range ids {
		if results[i].FileID != id {
			t.Errorf("results[%d].FileID = %q, want %q (input order)", i, results[i].FileID, id)
		}
	}

	wantStatus := []string{
		models.StatusSuccess,
		models.StatusFailure,
		models.StatusFailure,
		models.StatusSuccess,
	}

	for i, want := range wantStatus {
		if results[i].Status != want {
			t.Errorf("results[%d].Status = %q, want %q", i, results[i].Status, want)
		}
	}
}

func TestExtractAllCancelledContext(t *testing.T) {
	source := newFakeSource()

	extractor, err := NewExtractor(source, FormatTXT)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := extractor.ExtractAll(ctx, []string{"doc1", "sheet1"})

	if len(results) != 2 {
		t.Fatalf("ExtractAll() returned %d results, want one per input even when cancelled", len(results))
	}

	for i, result := range results {
		if result.Succeeded() {
			t.Errorf("results[%d] succeeded, want cancellation failure", i)
		}

		if !strings.Contains(result.ErrorDetail, "batch cancelled") {
			t.Errorf("results[%d].ErrorDetail = %q, want cancellation message", i, result.ErrorDetail)
		}
	}

	if len(source.exportCalls) != 0 {
		t.Errorf("export calls = %v, want none after cancellation", source.exportCalls)
	}
}

func TestNewExtractorRejectsUnknownFormat(t *testing.T) {
	if _, err := NewExtractor(newFakeSource(), "yaml"); err == nil {
		t.Error("NewExtractor(yaml) error = nil, want unsupported format error")
	}
}

func TestExportTarget(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		format   string
		wantMime string
		wantToMD bool
		wantErr  bool
	}{
		{"doc txt", MimeTypeGoogleDoc, FormatTXT, MimeTypePlainText, false, false},
		{"doc md", MimeTypeGoogleDoc, FormatMD, MimeTypeHTML, true, false},
		{"sheet txt", MimeTypeGoogleSheet, FormatTXT, MimeTypeCSV, false, false},
		{"sheet md", MimeTypeGoogleSheet, FormatMD, MimeTypeCSV, false, false},
		{"presentation", MimeTypeGooglePresentation, FormatTXT, "", false, true},
		{"pdf", "application/pdf", FormatTXT, "", false, true},
		{"folder", MimeTypeFolder, FormatTXT, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMime, gotToMD, err := exportTarget(tt.mimeType, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportTarget(%q, %q) error = %v, wantErr %v", tt.mimeType, tt.format, err, tt.wantErr)
			}

			if gotMime != tt.wantMime || gotToMD != tt.wantToMD {
				t.Errorf("exportTarget(%q, %q) = (%q, %v), want (%q, %v)",
					tt.mimeType, tt.format, gotMime, gotToMD, tt.wantMime, tt.wantToMD)
			}
		})
	}
}
