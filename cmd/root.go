package main

import (
	"fmt"
	"log/slog"
	"os"

	"drive-harvest/internal/config"
	"drive-harvest/internal/sources/google/drive"

	"github.com/spf13/cobra"
)

var (
	credentialsPath string
	tokenPath       string
	configDir       string
	debugMode       bool
	startDate       string
	endDate         string
)

var rootCmd = &cobra.Command{
	Use:   "drive-harvest",
	Short: "Search Google Drive and export document content to tabular files",
	Long: `drive-harvest searches Google Drive for files matching date, type, and
keyword filters, pulls the text content of matched documents, and writes
the results to CSV/XLSX files and an optional SQLite archive.

Commands:
  search    List files matching the filters
  extract   Pull content for specific files
  collect   Search, extract, and archive in one run
  auth      Manage Google credentials
  archive   Inspect and prune the results archive`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)

		if credentialsPath != "" {
			config.SetCustomCredentialsPath(credentialsPath)
		}

		if tokenPath != "" {
			config.SetCustomTokenPath(tokenPath)
		}

		if configDir != "" {
			config.SetCustomConfigDir(configDir)
		}

		return drive.ValidateTypeTagTable()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&credentialsPath, "credentials", "c", "", "Path to credentials.json file")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", "", "Path to the cached OAuth token file")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Custom configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&startDate, "start", "s", "", "Start date (ISO 8601, relative like '7d', named like 'today', or natural language like 'last week')")
	rootCmd.PersistentFlags().StringVarP(&endDate, "end", "e", "", "End date (ISO 8601, relative like '7d', named like 'today', or natural language like 'last week')")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
