package main

import (
	"context"
	"fmt"
	"path/filepath"

	"drive-harvest/internal/sinks"
	"drive-harvest/internal/sources/google/drive"
	"drive-harvest/pkg/interfaces"

	"github.com/spf13/cobra"
)

var (
	extractOutput   string
	extractSplitDir string
	extractPreview  bool
	extractFormat   string
	extractStdout   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file-id-or-url> [more files...]",
	Short: "Extract text content from Drive documents",
	Long: `Extract the text content of Google Drive documents and write the results
to a combined CSV file. Native docs export as plain text (or markdown with
--format md), native sheets as CSV. Files that cannot be extracted keep
their row with a failure status.

Accepts bare file IDs or any Drive/Docs URL:
  - docs.google.com/document/d/{ID}/edit
  - docs.google.com/spreadsheets/d/{ID}/edit
  - drive.google.com/file/d/{ID}/view
  - drive.google.com/open?id={ID}

Examples:
  drive-harvest extract 1AbC123
  drive-harvest extract "https://docs.google.com/document/d/1AbC123/edit" --stdout
  drive-harvest extract 1AbC123 1DeF456 --format md -o ./out/results.csv
  drive-harvest extract 1AbC123 1DeF456 --split-dir ./out/files --preview`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtractCommand,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Combined results CSV path (default: <output dir>/results.csv)")
	extractCmd.Flags().StringVar(&extractSplitDir, "split-dir", "", "Also write one CSV per successful file into this directory")
	extractCmd.Flags().BoolVar(&extractPreview, "preview", false, "Write a fixed-length content preview instead of full content")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "Document export format: txt or md (default from config)")
	extractCmd.Flags().BoolVar(&extractStdout, "stdout", false, "Print the content to stdout instead of writing files (single file only)")
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fileIDs, err := resolveFileIDs(args)
	if err != nil {
		return err
	}

	format := cfg.Extract.Format
	if extractFormat != "" {
		format = extractFormat
	}

	service, err := newDriveService()
	if err != nil {
		return err
	}

	extractor, err := drive.NewExtractor(service, format)
	if err != nil {
		return err
	}

	if extractStdout {
		if len(fileIDs) != 1 {
			return fmt.Errorf("--stdout accepts exactly one file, got %d", len(fileIDs))
		}

		result := extractor.Extract(fileIDs[0])
		if !result.Succeeded() {
			return fmt.Errorf("extraction failed: %s", result.ErrorDetail)
		}

		fmt.Print(result.Content)

		return nil
	}

	results := extractor.ExtractAll(ctx, fileIDs)

	outPath := extractOutput
	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, "results.csv")
	}

	preview := extractPreview || !cfg.Output.IncludeContent

	resultSinks := []interfaces.ResultSink{sinks.NewResultsCSVSink(outPath, preview)}
	if extractSplitDir != "" {
		resultSinks = append(resultSinks, sinks.NewSplitCSVSink(extractSplitDir))
	}

	for _, sink := range resultSinks {
		if err := sink.Write(ctx, results); err != nil {
			return fmt.Errorf("sink '%s' write failed: %w", sink.Name(), err)
		}
	}

	failed := 0

	for _, result := range results {
		if !result.Succeeded() {
			failed++
		}
	}

	fmt.Printf("Extracted %d of %d files to %s\n", len(results)-failed, len(results), outPath)

	if failed > 0 {
		fmt.Printf("%d extraction(s) failed; see the status column for details\n", failed)
	}

	return nil
}
