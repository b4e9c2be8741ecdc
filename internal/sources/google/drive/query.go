package drive

import (
	"fmt"
	"strings"

	"drive-harvest/pkg/models"
)

// Google Workspace MIME types.
const (
	MimeTypeGoogleDoc          = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet        = "application/vnd.google-apps.spreadsheet"
	MimeTypeGooglePresentation = "application/vnd.google-apps.presentation"
	MimeTypeFolder             = "application/vnd.google-apps.folder"
)

// Export MIME types.
const (
	MimeTypePlainText = "text/plain"
	MimeTypeHTML      = "text/html"
	MimeTypeCSV       = "text/csv"
)

// queryTimeLayout is the timestamp format the Drive query language accepts.
const queryTimeLayout = "2006-01-02T15:04:05"

// typeTagMIMEs maps a type tag to the MIME values it matches. Values ending
// in "/" are category prefixes and translate to "mimeType contains" clauses.
// Tags not in this table fall back to a filename-extension predicate.
var typeTagMIMEs = map[string][]string{
	// Documents
	"pdf":  {"application/pdf"},
	"doc":  {"application/msword"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"txt":  {"text/plain"},
	"rtf":  {"application/rtf"},

	// Spreadsheets
	"xls":  {"application/vnd.ms-excel"},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	"csv":  {"text/csv"},

	// Presentations
	"ppt":  {"application/vnd.ms-powerpoint"},
	"pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation"},

	// Google Workspace
	"gdoc":     {MimeTypeGoogleDoc},
	"gsheet":   {MimeTypeGoogleSheet},
	"gslide":   {MimeTypeGooglePresentation},
	"gform":    {"application/vnd.google-apps.form"},
	"gdrawing": {"application/vnd.google-apps.drawing"},
	"folder":   {MimeTypeFolder},

	// Images
	"image": {"image/"},
	"jpg":   {"image/jpeg"},
	"jpeg":  {"image/jpeg"},
	"png":   {"image/png"},
	"gif":   {"image/gif"},
	"bmp":   {"image/bmp"},
	"svg":   {"image/svg+xml"},
	"webp":  {"image/webp"},

	// Video
	"video": {"video/"},
	"mp4":   {"video/mp4"},
	"avi":   {"video/x-msvideo"},
	"mov":   {"video/quicktime"},
	"wmv":   {"video/x-ms-wmv"},

	// Audio
	"audio": {"audio/"},
	"mp3":   {"audio/mpeg"},
	"wav":   {"audio/wav"},

	// Archives
	"zip": {"application/zip"},
	"rar": {"application/x-rar-compressed"},
	"7z":  {"application/x-7z-compressed"},
	"tar": {"application/x-tar"},
	"gz":  {"application/gzip"},

	// Code and markup
	"json": {"application/json"},
	"xml":  {"application/xml"},
	"html": {"text/html"},
	"css":  {"text/css"},
	"js":   {"application/javascript"},
	"py":   {"text/x-python"},
}

// ValidateTypeTagTable checks the tag table for malformed entries. It runs
// once at startup; a failure indicates a programming error in the table.
func ValidateTypeTagTable() error {
	for tag, mimes := range typeTagMIMEs {
		if tag == "" || tag != strings.ToLower(tag) {
			return fmt.Errorf("invalid type tag %q: tags must be non-empty and lowercase", tag)
		}

		if len(mimes) == 0 {
			return fmt.Errorf("type tag %q has no MIME values", tag)
		}

		for _, m := range mimes {
			if !strings.Contains(m, "/") {
				return fmt.Errorf("type tag %q has malformed MIME value %q", tag, m)
			}
		}
	}

	return nil
}

// KnownTypeTag reports whether a tag is in the mapping table. Unknown tags
// are still usable; they match by filename extension instead.
func KnownTypeTag(tag string) bool {
	_, ok := typeTagMIMEs[strings.ToLower(tag)]

	return ok
}

// typeTagQuery expands type tags into an OR group of MIME predicates.
// Unknown tags become "name contains '.<tag>'" extension predicates.
func typeTagQuery(tags []string) string {
	var clauses []string

	for _, tag := range tags {
		tag = strings.ToLower(tag)

		mimes, ok := typeTagMIMEs[tag]
		if !ok {
			clauses = append(clauses, fmt.Sprintf("name contains '.%s'", tag))

			continue
		}

		for _, m := range mimes {
			if strings.HasSuffix(m, "/") {
				clauses = append(clauses, fmt.Sprintf("mimeType contains '%s'", m))
			} else {
				clauses = append(clauses, fmt.Sprintf("mimeType = '%s'", m))
			}
		}
	}

	return strings.Join(clauses, " or ")
}

// buildSearchQuery constructs a Drive API query string for one folder (or the
// whole drive when folderID is empty). The returned string is suitable for
// the q parameter of Files.List().
func buildSearchQuery(criteria models.SearchCriteria, folderID string) string {
	timeField := "modifiedTime"
	if criteria.DateField == models.DateFieldCreated {
		timeField = "createdTime"
	}

	parts := []string{
		fmt.Sprintf("%s >= '%s'", timeField, criteria.StartDate.Format(queryTimeLayout)),
		fmt.Sprintf("%s <= '%s'", timeField, criteria.EndDate.Format(queryTimeLayout)),
		"trashed = false",
	}

	if folderID != "" {
		parts = append(parts, fmt.Sprintf("'%s' in parents", folderID))
	}

	if len(criteria.TypeTags) > 0 {
		if tq := typeTagQuery(criteria.TypeTags); tq != "" {
			parts = append(parts, "("+tq+")")
		}
	}

	// Include keywords are pushed into the remote query as an optimization;
	// matchesKeywords below remains the authoritative filter.
	if len(criteria.IncludeKeywords) > 0 {
		nameClauses := make([]string, len(criteria.IncludeKeywords))
		for i, kw := range criteria.IncludeKeywords {
			nameClauses[i] = fmt.Sprintf("name contains '%s'", kw)
		}

		parts = append(parts, "("+strings.Join(nameClauses, " or ")+")")
	}

	return strings.Join(parts, " and ")
}

// subfolderQuery lists the immediate child folders of a folder.
func subfolderQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", folderID, MimeTypeFolder)
}

// matchesKeywords reports whether a file name passes the keyword filters:
// it must contain at least one include keyword (when the include list is
// non-empty) and none of the exclude keywords. Matching is case-insensitive.
func matchesKeywords(name string, includes, excludes []string) bool {
	lower := strings.ToLower(name)

	for _, kw := range excludes {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}

	if len(includes) == 0 {
		return true
	}

	for _, kw := range includes {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}

// filterByKeywords applies matchesKeywords to a result list.
func filterByKeywords(files []models.File, includes, excludes []string) []models.File {
	if len(includes) == 0 && len(excludes) == 0 {
		return files
	}

	filtered := make([]models.File, 0, len(files))

	for _, f := range files {
		if matchesKeywords(f.Name, includes, excludes) {
			filtered = append(filtered, f)
		}
	}

	return filtered
}

// dedupeByID drops files already seen, preserving first-seen order.
// Recursive searches can return the same file from multiple folder queries.
func dedupeByID(files []models.File) []models.File {
	seen := make(map[string]bool, len(files))
	unique := make([]models.File, 0, len(files))

	for _, f := range files {
		if seen[f.ID] {
			continue
		}

		seen[f.ID] = true
		unique = append(unique, f)
	}

	return unique
}
