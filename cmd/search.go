package main

import (
	"context"
	"fmt"

	"drive-harvest/internal/harvest"

	"github.com/spf13/cobra"
)

var (
	searchOutput string
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List Drive files matching date, type, and keyword filters",
	Long: `Search Google Drive for files matching the configured filters and write
the listing to a CSV or XLSX file.

Filters come from the config file; every flag below overrides its config
value. The date window is set with the global --start/--end flags and
defaults to the last 7 days.

Examples:
  drive-harvest search
  drive-harvest search --folder 1AbC... --type gdoc --include gemini
  drive-harvest search -s 2025-11-10 -e 2025-11-17 --date-field created
  drive-harvest search --format xlsx -o ./reports/files.xlsx`,
	RunE: runSearchCommand,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	registerCriteriaFlags(searchCmd)
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Listing file path (default: <output dir>/listing.<ext>)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "", "Listing format: csv or xlsx (default from config)")
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
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

	scope := "entire drive"
	if len(folders) > 0 {
		scope = fmt.Sprintf("%d folder(s)", len(folders))
	}

	fmt.Printf("Searching %s (%s)\n", scope, describeWindow(criteria))

	h := harvest.NewHarvester(service, nil)

	files, err := h.Search(ctx, harvest.Options{Criteria: criteria, FolderIDs: folders})
	if err != nil {
		return err
	}

	fmt.Printf("Found %d files\n", len(files))

	format := cfg.Output.ListingFormat
	if searchFormat != "" {
		format = searchFormat
	}

	path := searchOutput
	if path == "" {
		path = defaultListingPath(cfg, format)
	}

	sink, err := newListingSink(format, path)
	if err != nil {
		return err
	}

	if err := sink.WriteListing(ctx, files); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}

	fmt.Printf("Wrote listing to %s\n", path)

	return nil
}
