package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"drive-harvest/pkg/models"

	mdconverter "github.com/JohannesKaufmann/html-to-markdown/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Service wraps the Google Drive v3 API for file search and content export.
type Service struct {
	client *drive.Service
}

func NewService(httpClient *http.Client) (*Service, error) {
	driveService, err := drive.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{client: driveService}, nil
}

const defaultPageSize = 1000

// listFields covers everything the listing sinks render.
const listFields = "nextPageToken, " +
	"files(id,name,mimeType,createdTime,modifiedTime,size,webViewLink,owners,parents,driveId)"

// metadataFields is the field set for single-file lookups.
const metadataFields = "id,name,mimeType,createdTime,modifiedTime,owners,driveId"

// GetFileMetadata retrieves metadata for a single Drive file.
func (s *Service) GetFileMetadata(fileID string) (*models.File, error) {
	f, err := s.client.Files.Get(fileID).
		Fields(metadataFields).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve file metadata: %w", err)
	}

	file := convertFile(f)

	return &file, nil
}

// GetFolderName resolves a folder ID to its display name.
func (s *Service) GetFolderName(folderID string) (string, error) {
	folder, err := s.client.Files.Get(folderID).
		Fields("name").
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve folder name: %w", err)
	}

	return folder.Name, nil
}

// folderLister is the slice of the Drive surface the search walker needs.
type folderLister interface {
	listInFolder(criteria models.SearchCriteria, folderID string) ([]models.File, error)
	listSubfolders(folderID string, includeSharedDrives bool) ([]models.File, error)
}

var _ folderLister = (*Service)(nil)

// Search finds files matching the criteria. With a folder ID it searches that
// folder, descending into subfolders when Recursive is set; otherwise it
// searches everything visible to the authenticated user. Results are
// deduplicated by ID and keyword-filtered before being returned.
func (s *Service) Search(criteria models.SearchCriteria) ([]models.File, error) {
	return searchFolders(s, criteria)
}

func searchFolders(l folderLister, criteria models.SearchCriteria) ([]models.File, error) {
	var (
		files []models.File
		err   error
	)

	if criteria.FolderID == "" {
		files, err = l.listInFolder(criteria, "")
		if err != nil {
			return nil, fmt.Errorf("drive search failed: %w", err)
		}
	} else {
		visited := make(map[string]bool)

		files, err = walkFolder(l, criteria, criteria.FolderID, visited, true)
		if err != nil {
			return nil, err
		}
	}

	files = dedupeByID(files)
	files = filterByKeywords(files, criteria.IncludeKeywords, criteria.ExcludeKeywords)

	if criteria.MaxResults > 0 && len(files) > criteria.MaxResults {
		files = files[:criteria.MaxResults]
	}

	return files, nil
}

// walkFolder lists one folder and, when recursive, its subfolders. The
// visited map guards against shortcut cycles. Failures below the top-level
// folder are logged and skipped so one unreadable subfolder cannot sink the
// whole search; a failure at the top level is fatal.
func walkFolder(
	l folderLister,
	criteria models.SearchCriteria,
	folderID string,
	visited map[string]bool,
	top bool,
) ([]models.File, error) {
	if visited[folderID] {
		return nil, nil
	}

	visited[folderID] = true

	files, err := l.listInFolder(criteria, folderID)
	if err != nil {
		if top {
			return nil, fmt.Errorf("failed to search folder %s: %w", folderID, err)
		}

		slog.Warn("skipping unreadable folder", "folder_id", folderID, "error", err)

		return nil, nil
	}

	if !criteria.Recursive {
		return files, nil
	}

	subfolders, err := l.listSubfolders(folderID, criteria.IncludeSharedDrives)
	if err != nil {
		if top {
			return nil, fmt.Errorf("failed to list subfolders of %s: %w", folderID, err)
		}

		slog.Warn("skipping subfolders of unreadable folder", "folder_id", folderID, "error", err)

		return files, nil
	}

	for _, sub := range subfolders {
		subFiles, err := walkFolder(l, criteria, sub.ID, visited, false)
		if err != nil {
			return nil, err
		}

		files = append(files, subFiles...)
	}

	return files, nil
}

func (s *Service) listInFolder(criteria models.SearchCriteria, folderID string) ([]models.File, error) {
	query := buildSearchQuery(criteria, folderID)

	slog.Debug("listing drive files", "query", query)

	return s.listFiles(query, listParams{
		pageSize:            criteria.PageSize,
		maxResults:          criteria.MaxResults,
		includeSharedDrives: criteria.IncludeSharedDrives,
	})
}

func (s *Service) listSubfolders(folderID string, includeSharedDrives bool) ([]models.File, error) {
	return s.listFiles(subfolderQuery(folderID), listParams{includeSharedDrives: includeSharedDrives})
}

type listParams struct {
	pageSize            int
	maxResults          int
	includeSharedDrives bool
}

// listFiles runs one Files.List query, handling pagination automatically.
func (s *Service) listFiles(query string, p listParams) ([]models.File, error) {
	pageSize := int64(defaultPageSize)
	if p.pageSize > 0 {
		pageSize = int64(p.pageSize)
	}

	var files []models.File

	pageToken := ""

	for {
		req := s.client.Files.List().
			Fields(listFields).
			Q(query).
			PageSize(pageSize)

		if p.includeSharedDrives {
			req = req.IncludeItemsFromAllDrives(true).SupportsAllDrives(true)
		}

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		result, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive files: %w", err)
		}

		for _, f := range result.Files {
			files = append(files, convertFile(f))

			if p.maxResults > 0 && len(files) >= p.maxResults {
				return files, nil
			}
		}

		if result.NextPageToken == "" {
			break
		}

		pageToken = result.NextPageToken
	}

	return files, nil
}

// ExportDocument exports a Google Workspace document and returns the content
// as a ReadCloser.
func (s *Service) ExportDocument(fileID, exportMimeType string) (io.ReadCloser, error) {
	resp, err := s.client.Files.Export(fileID, exportMimeType).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to export document: %w", err)
	}

	return resp.Body, nil
}

// ExportAsString exports a Google Workspace file as a string. If
// convertToMarkdown is true the exported HTML is converted to Markdown.
func (s *Service) ExportAsString(fileID, exportMimeType string, convertToMarkdown bool) (string, error) {
	body, err := s.ExportDocument(fileID, exportMimeType)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read exported content: %w", err)
	}

	if convertToMarkdown {
		md, err := mdconverter.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
		}

		return md, nil
	}

	return string(data), nil
}

// ExtractFileID extracts a file ID from the Google Drive and Docs URL
// patterns users are likely to paste:
// - docs.google.com/document/d/{ID}
// - docs.google.com/spreadsheets/d/{ID}
// - docs.google.com/presentation/d/{ID}
// - drive.google.com/file/d/{ID}
// - drive.google.com/open?id={ID}
func ExtractFileID(url string) (string, error) {
	if fileID := extractFileIDFromPathURL(url); fileID != "" {
		return fileID, nil
	}

	if fileID := extractFileIDFromOpenURL(url); fileID != "" {
		return fileID, nil
	}

	return "", fmt.Errorf("unable to extract file ID from URL: %s", url)
}

// extractFileIDFromPathURL handles the ".../d/{ID}/..." URL shape shared by
// Docs, Sheets, Slides, and Drive file links.
func extractFileIDFromPathURL(url string) string {
	parts := strings.Split(url, "/")
	for i, part := range parts {
		if part == "d" && i+1 < len(parts) {
			fileID := parts[i+1]
			if idx := strings.Index(fileID, "?"); idx != -1 {
				fileID = fileID[:idx]
			}

			return fileID
		}
	}

	return ""
}

// extractFileIDFromOpenURL handles drive.google.com/open?id= URLs.
func extractFileIDFromOpenURL(url string) string {
	if !strings.Contains(url, "drive.google.com/open") {
		return ""
	}

	if !strings.Contains(url, "id=") {
		return ""
	}

	parts := strings.Split(url, "id=")
	if len(parts) < 2 {
		return ""
	}

	fileID := parts[1]
	if idx := strings.Index(fileID, "&"); idx != -1 {
		fileID = fileID[:idx]
	}

	return fileID
}

func convertFile(f *drive.File) models.File {
	file := models.File{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		DriveID:     f.DriveId,
	}

	for _, owner := range f.Owners {
		file.Owners = append(file.Owners, owner.DisplayName)
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			file.CreatedTime = t
		}
	}

	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			file.ModifiedTime = t
		}
	}

	return file
}
