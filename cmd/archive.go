package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"drive-harvest/internal/archive"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	archiveAfter string
	archiveYes   bool
	archiveLimit int
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect and prune the results archive",
	Long: `Inspect and prune the SQLite archive written by the collect command.

Subcommands:
  stats   Aggregate counts and the covered date range
  list    Results created after a date, newest first
  search  Full-text search over names and content
  show    Print the archived content of one file
  purge   Delete results created after a date`,
}

var archiveStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE:  runArchiveStatsCommand,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived results created after a date",
	RunE:  runArchiveListCommand,
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search archived names and content",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveSearchCommand,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <file-id-or-url>",
	Short: "Print the archived content of one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShowCommand,
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete archived results created after a date",
	RunE:  runArchivePurgeCommand,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveStatsCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archivePurgeCmd)

	archiveListCmd.Flags().StringVar(&archiveAfter, "after", "", "Only results created after this date (default: all)")
	archiveSearchCmd.Flags().IntVar(&archiveLimit, "limit", 20, "Maximum number of results to return")
	archivePurgeCmd.Flags().StringVar(&archiveAfter, "after", "", "Delete results created after this date")
	archivePurgeCmd.Flags().BoolVar(&archiveYes, "yes", false, "Skip the confirmation prompt")
	_ = archivePurgeCmd.MarkFlagRequired("after")
}

func openArchiveFromConfig() (*archive.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return openArchive(cfg)
}

func runArchiveStatsCommand(cmd *cobra.Command, args []string) error {
	store, err := openArchiveFromConfig()
	if err != nil {
		return err
	}

	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Results: %d (runs: %d)\n", stats.TotalResults, stats.TotalRuns)

	for _, status := range sortedKeys(stats.ResultsByStatus) {
		fmt.Printf("  %s: %d\n", status, stats.ResultsByStatus[status])
	}

	if !stats.OldestCreated.IsZero() {
		fmt.Printf("Created between %s and %s\n",
			stats.OldestCreated.Format("2006-01-02"), stats.NewestCreated.Format("2006-01-02"))
	}

	if len(stats.ResultsByFolder) > 0 {
		fmt.Println("By folder:")

		for _, folder := range sortedKeys(stats.ResultsByFolder) {
			label := folder
			if label == "" {
				label = "(unlabeled)"
			}

			fmt.Printf("  %s: %d\n", label, stats.ResultsByFolder[folder])
		}
	}

	return nil
}

func runArchiveListCommand(cmd *cobra.Command, args []string) error {
	after, err := parseAfterFlag()
	if err != nil {
		return err
	}

	store, err := openArchiveFromConfig()
	if err != nil {
		return err
	}

	defer store.Close()

	results, err := store.ListCreatedAfter(after)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No archived results found")

		return nil
	}

	for _, result := range results {
		label := ""
		if result.CreatedBy != "" {
			label = " [" + result.CreatedBy + "]"
		}

		fmt.Printf("%s  %-7s  %s%s  (%s)\n",
			result.CreatedTime.Format("2006-01-02"), result.Status, result.Name, label, result.FileID)
	}

	fmt.Printf("\n%d results\n", len(results))

	return nil
}

func runArchiveSearchCommand(cmd *cobra.Command, args []string) error {
	query := args[0]

	store, err := openArchiveFromConfig()
	if err != nil {
		return err
	}

	defer store.Close()

	results, err := store.Search(query, archiveLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("No results found for %q\n", query)

		return nil
	}

	fmt.Printf("Found %d results for %q:\n\n", len(results), query)

	for i, result := range results {
		fmt.Printf("%d. %s\n", i+1, result.Name)

		if result.CreatedBy != "" {
			fmt.Printf("   Created by: %s\n", result.CreatedBy)
		}

		fmt.Printf("   Created: %s   Status: %s   ID: %s\n",
			result.CreatedTime.Format("2006-01-02"), result.Status, result.FileID)
	}

	return nil
}

func runArchiveShowCommand(cmd *cobra.Command, args []string) error {
	fileIDs, err := resolveFileIDs(args)
	if err != nil {
		return err
	}

	store, err := openArchiveFromConfig()
	if err != nil {
		return err
	}

	defer store.Close()

	content, err := store.GetContent(fileIDs[0])
	if err != nil {
		return err
	}

	fmt.Print(content)

	return nil
}

func runArchivePurgeCommand(cmd *cobra.Command, args []string) error {
	after, err := parseAfterFlag()
	if err != nil {
		return err
	}

	store, err := openArchiveFromConfig()
	if err != nil {
		return err
	}

	defer store.Close()

	matching, err := store.ListCreatedAfter(after)
	if err != nil {
		return err
	}

	if len(matching) == 0 {
		fmt.Println("Nothing to purge")

		return nil
	}

	if !archiveYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to purge without confirmation; pass --yes to proceed")
		}

		var confirmed bool

		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d archived results created after %s?",
					len(matching), after.Format("2006-01-02"))).
				Value(&confirmed),
		))
		if err := form.Run(); err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}

		if !confirmed {
			fmt.Println("Purge cancelled")

			return nil
		}
	}

	purged, err := store.PurgeCreatedAfter(after)
	if err != nil {
		return err
	}

	fmt.Printf("Purged %d results\n", purged)

	return nil
}

// parseAfterFlag parses --after; an empty value means the beginning of time.
func parseAfterFlag() (time.Time, error) {
	if archiveAfter == "" {
		return time.Time{}, nil
	}

	after, err := parseDateTime(archiveAfter)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --after date: %w", err)
	}

	return after, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
