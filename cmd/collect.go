package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"drive-harvest/internal/archive"
	"drive-harvest/internal/harvest"
	"drive-harvest/internal/sinks"
	"drive-harvest/internal/sources/google/drive"
	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"

	"github.com/spf13/cobra"
)

var (
	collectOutput   string
	collectSplitDir string
	collectPreview  bool
	collectArchive  bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Search, extract, and archive in one run",
	Long: `Run the full pipeline: search the configured folders, extract the content
of every match, write the combined results CSV, and record the run in the
SQLite archive.

The archive step runs when archive.enabled is set in the config or the
--archive flag is given. Each archived result is labeled with the name of
the file's parent folder.

Examples:
  drive-harvest collect
  drive-harvest collect --folder 1AbC... --folder 1DeF... --type gdoc --include gemini
  drive-harvest collect -s today -e today --date-field created --archive`,
	RunE: runCollectCommand,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	registerCriteriaFlags(collectCmd)
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "", "Combined results CSV path (default: <output dir>/results.csv)")
	collectCmd.Flags().StringVar(&collectSplitDir, "split-dir", "", "Also write one CSV per successful file into this directory")
	collectCmd.Flags().BoolVar(&collectPreview, "preview", false, "Write a fixed-length content preview instead of full content")
	collectCmd.Flags().BoolVar(&collectArchive, "archive", false, "Record results in the archive even when disabled in config")
}

func runCollectCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	criteria, err := searchCriteriaFromConfig(cfg)
	if err != nil {
		return err
	}

	folders, err := applyCriteriaFlags(cmd, cfg, &criteria)
	if err != nil {
		return err
	}

	service, err := newDriveService()
	if err != nil {
		return err
	}

	extractor, err := drive.NewExtractor(service, cfg.Extract.Format)
	if err != nil {
		return err
	}

	outPath := collectOutput
	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, "results.csv")
	}

	preview := collectPreview || !cfg.Output.IncludeContent

	resultSinks := []interfaces.ResultSink{sinks.NewResultsCSVSink(outPath, preview)}
	if collectSplitDir != "" {
		resultSinks = append(resultSinks, sinks.NewSplitCSVSink(collectSplitDir))
	}

	scope := "entire drive"
	if len(folders) > 0 {
		scope = fmt.Sprintf("%d folder(s)", len(folders))
	}

	fmt.Printf("Collecting from %s (%s)\n", scope, describeWindow(criteria))

	h := harvest.NewHarvester(service, extractor)

	result, err := h.Run(ctx, harvest.Options{Criteria: criteria, FolderIDs: folders}, resultSinks)
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %d of %d files to %s\n",
		len(result.Results)-result.Failures(), len(result.Results), outPath)

	if cfg.Archive.Enabled || collectArchive {
		if err := archiveResults(service, cfg, criteria, result); err != nil {
			return err
		}
	}

	return nil
}

// archiveResults records the run and its results in the archive, labeling
// each result with its parent folder's name.
func archiveResults(namer harvest.FolderNamer, cfg *models.Config, criteria models.SearchCriteria, result *harvest.Result) error {
	store, err := openArchive(cfg)
	if err != nil {
		return err
	}

	defer store.Close()

	dateField := criteria.DateField
	if dateField == "" {
		dateField = models.DateFieldModified
	}

	runID, err := store.StartRun(time.Now(),
		dateField,
		criteria.StartDate.Format("2006-01-02"),
		criteria.EndDate.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	createdBy := harvest.ResolveCreatedBy(namer, result.Files)

	resultsByID := make(map[string]models.ExtractionResult, len(result.Results))
	for _, r := range result.Results {
		resultsByID[r.FileID] = r
	}

	for _, file := range result.Files {
		r := resultsByID[file.ID]

		err := store.IndexResult(archive.Result{
			FileID:       file.ID,
			RunID:        runID,
			Name:         file.Name,
			MimeType:     file.MimeType,
			CreatedTime:  file.CreatedTime,
			ModifiedTime: file.ModifiedTime,
			Status:       r.Status,
			ErrorDetail:  r.ErrorDetail,
			Content:      r.Content,
			CreatedBy:    createdBy[file.ID],
		})
		if err != nil {
			return fmt.Errorf("failed to archive result for %s: %w", file.ID, err)
		}
	}

	if err := store.FinishRun(runID, len(result.Files)); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	fmt.Printf("Archived %d results (run %d)\n", len(result.Files), runID)

	return nil
}
