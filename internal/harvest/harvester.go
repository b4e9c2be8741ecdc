package harvest

import (
	"context"
	"fmt"
	"log/slog"

	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"
)

// Lister finds files matching search criteria.
type Lister interface {
	Search(criteria models.SearchCriteria) ([]models.File, error)
}

// Extractor retrieves document content for a batch of file IDs.
type Extractor interface {
	ExtractAll(ctx context.Context, fileIDs []string) []models.ExtractionResult
}

// FolderNamer resolves a folder ID to its display name.
type FolderNamer interface {
	GetFolderName(folderID string) (string, error)
}

// Options controls a single harvest run.
type Options struct {
	// Criteria applies to every searched root.
	Criteria models.SearchCriteria

	// FolderIDs lists the folders to search. Empty searches the whole
	// drive once, using Criteria.FolderID as-is.
	FolderIDs []string
}

// Result is returned by Run.
type Result struct {
	// Files are the deduplicated search hits across all roots.
	Files []models.File

	// Results holds one extraction outcome per file, in Files order.
	Results []models.ExtractionResult
}

// Failures counts the results that did not extract.
func (r *Result) Failures() int {
	n := 0

	for _, result := range r.Results {
		if !result.Succeeded() {
			n++
		}
	}

	return n
}

// Harvester runs the search → extract → sinks pipeline sequentially.
type Harvester struct {
	lister    Lister
	extractor Extractor
}

func NewHarvester(lister Lister, extractor Extractor) *Harvester {
	return &Harvester{lister: lister, extractor: extractor}
}

// Search runs the search phase alone, merging hits across the requested
// roots.
func (h *Harvester) Search(ctx context.Context, opts Options) ([]models.File, error) {
	return h.searchAll(ctx, opts)
}

// Run searches every requested root, extracts content for each hit, and
// writes the results to each sink in order. A failed search is fatal; failed
// extractions are carried inside the results. The first sink error aborts
// the run.
func (h *Harvester) Run(ctx context.Context, opts Options, sinks []interfaces.ResultSink) (*Result, error) {
	files, err := h.searchAll(ctx, opts)
	if err != nil {
		return nil, err
	}

	slog.Info("search complete", "files", len(files))

	fileIDs := make([]string, len(files))
	for i, file := range files {
		fileIDs[i] = file.ID
	}

	results := h.extractor.ExtractAll(ctx, fileIDs)
	result := &Result{Files: files, Results: results}

	slog.Info("extraction complete", "files", len(results), "failures", result.Failures())

	for _, sink := range sinks {
		if err := sink.Write(ctx, results); err != nil {
			return nil, fmt.Errorf("sink '%s' write failed: %w", sink.Name(), err)
		}
	}

	return result, nil
}

// searchAll runs one search per requested folder and merges the hits,
// dropping duplicate IDs so a file linked under several roots is extracted
// once.
func (h *Harvester) searchAll(ctx context.Context, opts Options) ([]models.File, error) {
	if len(opts.FolderIDs) == 0 {
		files, err := h.lister.Search(opts.Criteria)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		return files, nil
	}

	var all []models.File

	seen := make(map[string]bool)

	for _, folderID := range opts.FolderIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		criteria := opts.Criteria
		criteria.FolderID = folderID

		files, err := h.lister.Search(criteria)
		if err != nil {
			return nil, fmt.Errorf("search of folder %s failed: %w", folderID, err)
		}

		slog.Debug("folder searched", "folder_id", folderID, "files", len(files))

		for _, file := range files {
			if seen[file.ID] {
				continue
			}

			seen[file.ID] = true

			all = append(all, file)
		}
	}

	return all, nil
}

// ResolveCreatedBy maps each file ID to the name of the file's first parent
// folder. Each distinct folder is fetched once. Files without a parent are
// omitted; a folder that cannot be resolved is logged and its files map to
// an empty label.
func ResolveCreatedBy(namer FolderNamer, files []models.File) map[string]string {
	folderNames := make(map[string]string)
	labels := make(map[string]string)

	for _, file := range files {
		if len(file.Parents) == 0 {
			continue
		}

		folderID := file.Parents[0]

		name, ok := folderNames[folderID]
		if !ok {
			var err error

			name, err = namer.GetFolderName(folderID)
			if err != nil {
				slog.Warn("failed to resolve parent folder name", "folder_id", folderID, "error", err)

				name = ""
			}

			folderNames[folderID] = name
		}

		labels[file.ID] = name
	}

	return labels
}
