package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"drive-harvest/internal/archive"
	"drive-harvest/internal/config"
	"drive-harvest/internal/sinks"
	"drive-harvest/internal/sources/google/auth"
	"drive-harvest/internal/sources/google/drive"
	"drive-harvest/pkg/interfaces"
	"drive-harvest/pkg/models"

	"github.com/spf13/cobra"
)

// loadConfig returns the saved configuration, falling back to the defaults
// when no config file exists yet.
func loadConfig() (*models.Config, error) {
	cfg, err := config.LoadConfig()
	if errors.Is(err, config.ErrNotFound) {
		slog.Debug("no config file found, using defaults")

		cfg = config.GetDefaultConfig()
	} else if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveWindow turns the --start/--end flag values into a whole-day search
// window: the start is floored to 00:00:00 and the end raised to 23:59:59.
// End defaults to today; start defaults to the configured since offset,
// falling back to the last 7 days.
func resolveWindow(startFlag, endFlag, defaultSince string) (time.Time, time.Time, error) {
	end := time.Now()

	if endFlag != "" {
		parsed, err := parseDateTime(endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}

		end = parsed
	}

	var start time.Time

	switch {
	case startFlag != "":
		parsed, err := parseDateTime(startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}

		start = parsed
	case defaultSince != "":
		parsed, err := parseDateTime(defaultSince)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid default_since in config: %w", err)
		}

		start = parsed
	default:
		start = end.AddDate(0, 0, -7)
	}

	start = startOfDay(start)
	end = endOfDay(end)

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return start, end, nil
}

// searchCriteriaFromConfig seeds search criteria from the config defaults and
// the resolved date window. Command flags layer their overrides on top.
func searchCriteriaFromConfig(cfg *models.Config) (models.SearchCriteria, error) {
	start, end, err := resolveWindow(startDate, endDate, cfg.Drive.DefaultSince)
	if err != nil {
		return models.SearchCriteria{}, err
	}

	return models.SearchCriteria{
		StartDate:           start,
		EndDate:             end,
		DateField:           cfg.Drive.DateField,
		TypeTags:            cfg.Drive.FileTypes,
		IncludeKeywords:     cfg.Drive.IncludeKeywords,
		ExcludeKeywords:     cfg.Drive.ExcludeKeywords,
		Recursive:           cfg.Drive.Recursive,
		IncludeSharedDrives: cfg.Drive.IncludeSharedDrives,
		PageSize:            cfg.Drive.PageSize,
		MaxResults:          cfg.Drive.MaxResults,
	}, nil
}

// logUnknownTypeTags notes tags that will match as filename extensions
// instead of MIME types.
func logUnknownTypeTags(tags []string) {
	for _, tag := range tags {
		if !drive.KnownTypeTag(tag) {
			slog.Debug("type tag not in table, matching as filename extension", "tag", tag)
		}
	}
}

// newDriveService authenticates and returns a Drive service handle.
func newDriveService() (*drive.Service, error) {
	client, err := auth.GetClient()
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	service, err := drive.NewService(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return service, nil
}

// resolveFileIDs accepts bare file IDs or Drive/Docs URLs and returns IDs.
func resolveFileIDs(args []string) ([]string, error) {
	ids := make([]string, len(args))

	for i, arg := range args {
		if !strings.Contains(arg, "/") {
			ids[i] = arg

			continue
		}

		id, err := drive.ExtractFileID(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}

		ids[i] = id
	}

	return ids, nil
}

// resolveFolderID accepts a bare folder ID or a drive.google.com folder URL.
func resolveFolderID(arg string) (string, error) {
	if !strings.Contains(arg, "/") {
		return arg, nil
	}

	parts := strings.Split(arg, "/")
	for i, part := range parts {
		if part == "folders" && i+1 < len(parts) {
			id := parts[i+1]
			if idx := strings.IndexAny(id, "?#"); idx != -1 {
				id = id[:idx]
			}

			return id, nil
		}
	}

	return drive.ExtractFileID(arg)
}

// Filter flags shared by the search and collect commands.
var (
	flagFolders      []string
	flagTypes        []string
	flagInclude      []string
	flagExclude      []string
	flagRecursive    bool
	flagSharedDrives bool
	flagMaxResults   int
	flagDateField    string
)

// registerCriteriaFlags adds the shared filter flags to a command.
func registerCriteriaFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagFolders, "folder", nil, "Folder ID or URL to search, repeatable (default: config folders, else the entire drive)")
	cmd.Flags().StringSliceVar(&flagTypes, "type", nil, "Type tags to match (gdoc, gsheet, pdf, image, ...)")
	cmd.Flags().StringSliceVar(&flagInclude, "include", nil, "Keep only files whose name contains one of these keywords")
	cmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Drop files whose name contains any of these keywords")
	cmd.Flags().BoolVar(&flagRecursive, "recursive", true, "Recurse into subfolders")
	cmd.Flags().BoolVar(&flagSharedDrives, "shared-drives", false, "Include shared-drive items")
	cmd.Flags().IntVar(&flagMaxResults, "max-results", 0, "Cap on total results per search (0 = unlimited)")
	cmd.Flags().StringVar(&flagDateField, "date-field", "", "Timestamp the date window applies to: created or modified")
}

// applyCriteriaFlags layers the flags the user actually set over the
// config-seeded criteria and returns the folder roots to search.
func applyCriteriaFlags(cmd *cobra.Command, cfg *models.Config, criteria *models.SearchCriteria) ([]string, error) {
	folders := cfg.Drive.FolderIDs
	if cmd.Flags().Changed("folder") {
		folders = flagFolders
	}

	resolved := make([]string, len(folders))

	for i, folder := range folders {
		id, err := resolveFolderID(folder)
		if err != nil {
			return nil, err
		}

		resolved[i] = id
	}

	if cmd.Flags().Changed("type") {
		criteria.TypeTags = flagTypes
	}

	if cmd.Flags().Changed("include") {
		criteria.IncludeKeywords = flagInclude
	}

	if cmd.Flags().Changed("exclude") {
		criteria.ExcludeKeywords = flagExclude
	}

	if cmd.Flags().Changed("recursive") {
		criteria.Recursive = flagRecursive
	}

	if cmd.Flags().Changed("shared-drives") {
		criteria.IncludeSharedDrives = flagSharedDrives
	}

	if cmd.Flags().Changed("max-results") {
		criteria.MaxResults = flagMaxResults
	}

	if cmd.Flags().Changed("date-field") {
		if flagDateField != models.DateFieldCreated && flagDateField != models.DateFieldModified {
			return nil, fmt.Errorf("invalid date field %q (supported: created, modified)", flagDateField)
		}

		criteria.DateField = flagDateField
	}

	logUnknownTypeTags(criteria.TypeTags)

	return resolved, nil
}

// describeWindow renders the search window for progress messages.
func describeWindow(criteria models.SearchCriteria) string {
	field := criteria.DateField
	if field == "" {
		field = models.DateFieldModified
	}

	return fmt.Sprintf("%s between %s and %s",
		field,
		criteria.StartDate.Format("2006-01-02"),
		criteria.EndDate.Format("2006-01-02"))
}

// newListingSink picks the listing writer for the requested format.
func newListingSink(format, path string) (interfaces.ListingSink, error) {
	switch format {
	case "", "csv":
		return sinks.NewListingCSVSink(path), nil
	case "xlsx":
		return sinks.NewListingXLSXSink(path), nil
	default:
		return nil, fmt.Errorf("unknown listing format '%s': supported formats are 'csv' and 'xlsx'", format)
	}
}

// defaultListingPath places the listing file in the configured output
// directory with the format's extension.
func defaultListingPath(cfg *models.Config, format string) string {
	ext := "csv"
	if format == "xlsx" {
		ext = "xlsx"
	}

	return filepath.Join(cfg.Output.Dir, "listing."+ext)
}

// openArchive opens (creating if needed) the archive database.
func openArchive(cfg *models.Config) (*archive.Store, error) {
	dbPath, err := config.GetArchivePath(cfg.Archive.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive path: %w", err)
	}

	store, err := archive.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", dbPath, err)
	}

	return store, nil
}
