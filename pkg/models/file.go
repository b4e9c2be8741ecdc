package models

import (
	"fmt"
	"time"
)

// Date fields a search can filter on.
const (
	DateFieldCreated  = "created"
	DateFieldModified = "modified"
)

// Extraction result statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// PreviewLength is the number of characters kept in preview-mode output.
const PreviewLength = 200

// File holds metadata for a single Drive file as returned by a listing call.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
	Size         int64     `json:"size,omitempty"`
	WebViewLink  string    `json:"web_view_link,omitempty"`
	Owners       []string  `json:"owners,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	DriveID      string    `json:"drive_id,omitempty"`
}

// SearchCriteria describes one search invocation. Constructed by the caller,
// consumed once, never persisted.
type SearchCriteria struct {
	// Date window, inclusive on both ends. Zero values fall back to the
	// last 7 days ending today.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// DateField selects which timestamp the window applies to:
	// "created" or "modified".
	DateField string `json:"date_field"`

	// TypeTags restrict results by file type ("gdoc", "pdf", "image", ...).
	// Empty means all types.
	TypeTags []string `json:"type_tags,omitempty"`

	// IncludeKeywords keeps only files whose name contains at least one
	// keyword (when non-empty). ExcludeKeywords drops files whose name
	// contains any keyword.
	IncludeKeywords []string `json:"include_keywords,omitempty"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty"`

	// FolderID roots the search at a folder; empty searches the whole drive.
	FolderID string `json:"folder_id,omitempty"`

	// Recursive walks subfolders of FolderID. Ignored when FolderID is empty.
	Recursive bool `json:"recursive"`

	// IncludeSharedDrives opts in to shared-drive items on every list call.
	IncludeSharedDrives bool `json:"include_shared_drives"`

	// PageSize is results per page (default 1000). MaxResults caps the
	// total; 0 means unlimited.
	PageSize   int `json:"page_size,omitempty"`
	MaxResults int `json:"max_results,omitempty"`
}

// ExtractionResult is the uniform per-file outcome of content extraction.
// Every input file ID yields exactly one result; failures are recorded here,
// never raised out of a batch.
type ExtractionResult struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type,omitempty"`
	Content     string `json:"content,omitempty"`
	Status      string `json:"status"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// Succeeded reports whether content was extracted.
func (r ExtractionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ContentLength returns the content length in characters.
func (r ExtractionResult) ContentLength() int {
	return len([]rune(r.Content))
}

// Preview returns the first PreviewLength characters of the content, or the
// full content when it is shorter.
func (r ExtractionResult) Preview() string {
	runes := []rune(r.Content)
	if len(runes) <= PreviewLength {
		return r.Content
	}

	return string(runes[:PreviewLength])
}

// FormatSize renders a byte count in human-readable form (B, KB, MB, GB).
// Drive reports no size for folders and native Workspace files; those render
// as "N/A".
func FormatSize(sizeBytes int64) string {
	if sizeBytes <= 0 {
		return "N/A"
	}

	switch {
	case sizeBytes < 1024:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(sizeBytes)/1024)
	case sizeBytes < 1024*1024*1024:
		return fmt.Sprintf("%.2f MB", float64(sizeBytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(sizeBytes)/(1024*1024*1024))
	}
}
