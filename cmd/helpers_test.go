package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"drive-harvest/pkg/models"

	"github.com/spf13/cobra"
)

func TestResolveWindow_ExplicitDatesAreDayBounded(t *testing.T) {
	start, end, err := resolveWindow("2025-11-01", "2025-11-12", "")
	if err != nil {
		t.Fatalf("Expected window to resolve, got error: %v", err)
	}

	wantStart := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}

	wantEnd := time.Date(2025, 11, 12, 23, 59, 59, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, end)
	}
}

func TestResolveWindow_SameDayIsValid(t *testing.T) {
	start, end, err := resolveWindow("2025-11-12", "2025-11-12", "")
	if err != nil {
		t.Fatalf("Expected same-day window to resolve, got error: %v", err)
	}

	if start.Day() != end.Day() || !start.Before(end) {
		t.Errorf("Expected a whole-day window, got %v to %v", start, end)
	}
}

func TestResolveWindow_Defaults(t *testing.T) {
	start, end, err := resolveWindow("", "", "")
	if err != nil {
		t.Fatalf("Expected defaults to resolve, got error: %v", err)
	}

	now := time.Now()
	if end.Year() != now.Year() || end.YearDay() != now.YearDay() {
		t.Errorf("Expected end to default to today, got %v", end)
	}

	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("Expected end of day, got %v", end)
	}

	weekAgo := now.AddDate(0, 0, -7)
	if start.Year() != weekAgo.Year() || start.YearDay() != weekAgo.YearDay() {
		t.Errorf("Expected start to default to 7 days ago, got %v", start)
	}

	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("Expected start of day, got %v", start)
	}
}

func TestResolveWindow_DefaultSinceFromConfig(t *testing.T) {
	start, _, err := resolveWindow("", "2025-11-12", "2025-11-05")
	if err != nil {
		t.Fatalf("Expected window to resolve, got error: %v", err)
	}

	wantStart := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start from default_since %v, got %v", wantStart, start)
	}
}

func TestResolveWindow_StartFlagBeatsDefaultSince(t *testing.T) {
	start, _, err := resolveWindow("2025-11-01", "2025-11-12", "2025-10-01")
	if err != nil {
		t.Fatalf("Expected window to resolve, got error: %v", err)
	}

	if start.Month() != time.November || start.Day() != 1 {
		t.Errorf("Expected the start flag to win, got %v", start)
	}
}

func TestResolveWindow_Errors(t *testing.T) {
	testCases := []struct {
		name         string
		start        string
		end          string
		defaultSince string
		wantErr      string
	}{
		{"start after end", "2025-11-13", "2025-11-12", "", "after end date"},
		{"bad start", "garbage", "2025-11-12", "", "invalid start date"},
		{"bad end", "", "garbage", "", "invalid end date"},
		{"bad default_since", "", "2025-11-12", "garbage", "invalid default_since"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := resolveWindow(tc.start, tc.end, tc.defaultSince)
			if err == nil {
				t.Fatalf("Expected error for %s, got none", tc.name)
			}

			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestResolveFileIDs(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "bare IDs pass through",
			args: []string{"1abcDEF", "2ghiJKL"},
			want: []string{"1abcDEF", "2ghiJKL"},
		},
		{
			name: "document URL",
			args: []string{"https://docs.google.com/document/d/1abcDEF/edit"},
			want: []string{"1abcDEF"},
		},
		{
			name: "spreadsheet URL with query",
			args: []string{"https://docs.google.com/spreadsheets/d/1xyz?usp=sharing"},
			want: []string{"1xyz"},
		},
		{
			name: "open URL",
			args: []string{"https://drive.google.com/open?id=1qrs&authuser=0"},
			want: []string{"1qrs"},
		},
		{
			name: "mixed bare and URL",
			args: []string{"1abcDEF", "https://docs.google.com/document/d/2ghiJKL/edit"},
			want: []string{"1abcDEF", "2ghiJKL"},
		},
		{
			name:    "unrecognized URL",
			args:    []string{"https://example.com/nothing"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveFileIDs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected error, got none")
				}

				return
			}

			if err != nil {
				t.Fatalf("Expected IDs to resolve, got error: %v", err)
			}

			if len(got) != len(tc.want) {
				t.Fatalf("Expected %d IDs, got %d", len(tc.want), len(got))
			}

			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("Expected ID %d to be %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestResolveFolderID(t *testing.T) {
	testCases := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{
			name: "bare ID passes through",
			arg:  "0B1folderID",
			want: "0B1folderID",
		},
		{
			name: "folder URL",
			arg:  "https://drive.google.com/drive/folders/1FoLdEr",
			want: "1FoLdEr",
		},
		{
			name: "folder URL with query",
			arg:  "https://drive.google.com/drive/folders/1FoLdEr?usp=sharing",
			want: "1FoLdEr",
		},
		{
			name: "folder URL with account path and fragment",
			arg:  "https://drive.google.com/drive/u/0/folders/1FoLdEr#recent",
			want: "1FoLdEr",
		},
		{
			name: "file URL falls back to file ID extraction",
			arg:  "https://docs.google.com/document/d/1abc/edit",
			want: "1abc",
		},
		{
			name:    "unrecognized URL",
			arg:     "https://example.com/x",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveFolderID(tc.arg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected error, got none")
				}

				return
			}

			if err != nil {
				t.Fatalf("Expected folder ID to resolve, got error: %v", err)
			}

			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func newCriteriaCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	registerCriteriaFlags(cmd)

	return cmd
}

func TestApplyCriteriaFlags_ConfigDefaultsWhenUnset(t *testing.T) {
	cmd := newCriteriaCommand()
	cfg := &models.Config{}
	cfg.Drive.FolderIDs = []string{"cfg-folder"}

	criteria := models.SearchCriteria{
		TypeTags:  []string{"gdoc"},
		Recursive: true,
	}

	folders, err := applyCriteriaFlags(cmd, cfg, &criteria)
	if err != nil {
		t.Fatalf("Expected flags to apply, got error: %v", err)
	}

	if len(folders) != 1 || folders[0] != "cfg-folder" {
		t.Errorf("Expected config folders, got %v", folders)
	}

	if len(criteria.TypeTags) != 1 || criteria.TypeTags[0] != "gdoc" {
		t.Errorf("Expected criteria to keep config types, got %v", criteria.TypeTags)
	}

	if !criteria.Recursive {
		t.Error("Expected recursive to stay enabled")
	}
}

func TestApplyCriteriaFlags_FlagsOverrideConfig(t *testing.T) {
	cmd := newCriteriaCommand()
	cfg := &models.Config{}
	cfg.Drive.FolderIDs = []string{"cfg-folder"}

	criteria := models.SearchCriteria{
		TypeTags:  []string{"gdoc"},
		Recursive: true,
	}

	mustSet := func(name, value string) {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("Failed to set flag %s: %v", name, err)
		}
	}

	mustSet("folder", "https://drive.google.com/drive/folders/abc123?usp=sharing")
	mustSet("type", "pdf,image")
	mustSet("recursive", "false")
	mustSet("max-results", "50")
	mustSet("date-field", "created")

	folders, err := applyCriteriaFlags(cmd, cfg, &criteria)
	if err != nil {
		t.Fatalf("Expected flags to apply, got error: %v", err)
	}

	if len(folders) != 1 || folders[0] != "abc123" {
		t.Errorf("Expected resolved flag folder, got %v", folders)
	}

	if len(criteria.TypeTags) != 2 || criteria.TypeTags[0] != "pdf" || criteria.TypeTags[1] != "image" {
		t.Errorf("Expected flag types, got %v", criteria.TypeTags)
	}

	if criteria.Recursive {
		t.Error("Expected recursive to be disabled by the flag")
	}

	if criteria.MaxResults != 50 {
		t.Errorf("Expected max results 50, got %d", criteria.MaxResults)
	}

	if criteria.DateField != models.DateFieldCreated {
		t.Errorf("Expected date field created, got %q", criteria.DateField)
	}
}

func TestApplyCriteriaFlags_InvalidDateField(t *testing.T) {
	cmd := newCriteriaCommand()
	if err := cmd.Flags().Set("date-field", "bogus"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}

	criteria := models.SearchCriteria{}

	_, err := applyCriteriaFlags(cmd, &models.Config{}, &criteria)
	if err == nil {
		t.Fatal("Expected error for invalid date field, got none")
	}

	if !strings.Contains(err.Error(), "invalid date field") {
		t.Errorf("Expected invalid date field error, got: %v", err)
	}
}

func TestDescribeWindow(t *testing.T) {
	criteria := models.SearchCriteria{
		StartDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 12, 23, 59, 59, 0, time.UTC),
	}

	got := describeWindow(criteria)
	want := "modified between 2025-11-01 and 2025-11-12"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	criteria.DateField = models.DateFieldCreated

	got = describeWindow(criteria)
	if !strings.HasPrefix(got, "created between") {
		t.Errorf("Expected created window description, got %q", got)
	}
}

func TestNewListingSink(t *testing.T) {
	testCases := []struct {
		format   string
		wantName string
	}{
		{"", "listing-csv"},
		{"csv", "listing-csv"},
		{"xlsx", "listing-xlsx"},
	}

	for _, tc := range testCases {
		sink, err := newListingSink(tc.format, "out/listing")
		if err != nil {
			t.Fatalf("Expected sink for format %q, got error: %v", tc.format, err)
		}

		if sink.Name() != tc.wantName {
			t.Errorf("Expected sink %q for format %q, got %q", tc.wantName, tc.format, sink.Name())
		}
	}

	_, err := newListingSink("pdf", "out/listing")
	if err == nil {
		t.Fatal("Expected error for unknown format, got none")
	}

	if !strings.Contains(err.Error(), "unknown listing format") {
		t.Errorf("Expected unknown format error, got: %v", err)
	}
}

func TestDefaultListingPath(t *testing.T) {
	cfg := &models.Config{}
	cfg.Output.Dir = "out"

	if got := defaultListingPath(cfg, ""); got != filepath.Join("out", "listing.csv") {
		t.Errorf("Expected default csv path, got %q", got)
	}

	if got := defaultListingPath(cfg, "xlsx"); got != filepath.Join("out", "listing.xlsx") {
		t.Errorf("Expected xlsx path, got %q", got)
	}
}
