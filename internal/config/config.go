package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drive-harvest/pkg/models"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "config.yaml"

// ErrNotFound reports that no config file exists in any search path.
// Callers may treat it as "use defaults".
var ErrNotFound = errors.New("config file not found")

// LoadConfig loads configuration from the standard search paths.
func LoadConfig() (*models.Config, error) {
	// Search for config file in order:
	// 1. Custom config dir (if set)
	// 2. Global config directory
	// 3. Current directory
	configPaths := getConfigSearchPaths()

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return nil, fmt.Errorf("%w in search paths: %v", ErrNotFound, configPaths)
}

// SaveConfig saves configuration to the appropriate location.
func SaveConfig(cfg *models.Config) error {
	configPath, err := getConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *models.Config {
	return &models.Config{
		Drive: models.DriveConfig{
			FolderIDs:           []string{},
			Recursive:           true,
			IncludeSharedDrives: false,
			DateField:           models.DateFieldModified,
			DefaultSince:        "7d",
			FileTypes:           []string{"gdoc", "gsheet"},
			IncludeKeywords:     []string{},
			ExcludeKeywords:     []string{},
			PageSize:            1000,
		},
		Extract: models.ExtractConfig{
			Format: "txt",
		},
		Output: models.OutputConfig{
			Dir:            "./output",
			ListingFormat:  "csv",
			IncludeContent: true,
		},
		Archive: models.ArchiveConfig{
			Enabled: false,
			DBPath:  "", // Resolved to <config dir>/archive.db at runtime.
		},
	}
}

// CreateDefaultConfig creates and saves a default configuration.
func CreateDefaultConfig() error {
	cfg := GetDefaultConfig()

	return SaveConfig(cfg)
}

// getConfigSearchPaths returns the list of paths to search for config files.
func getConfigSearchPaths() []string {
	var paths []string

	// Custom config dir (if set via --config-dir flag)
	if customConfigDir != "" {
		paths = append(paths, filepath.Join(customConfigDir, ConfigFileName))
	}

	// Global config directory
	if globalConfigDir, err := GetConfigDir(); err == nil {
		paths = append(paths, filepath.Join(globalConfigDir, ConfigFileName))
	}

	// Current directory
	paths = append(paths, ConfigFileName)

	return paths
}

// getConfigFilePath returns the path where config should be saved.
func getConfigFilePath() (string, error) {
	if customConfigDir != "" {
		return filepath.Join(customConfigDir, ConfigFileName), nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

// loadConfigFromFile loads configuration from a specific file.
func loadConfigFromFile(configPath string) (*models.Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg models.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &cfg, nil
}

// ValidateConfig performs validation of the configuration.
func ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := validateDriveConfig(&cfg.Drive); err != nil {
		return fmt.Errorf("drive configuration error: %w", err)
	}

	if err := validateExtractConfig(&cfg.Extract); err != nil {
		return fmt.Errorf("extract configuration error: %w", err)
	}

	if err := validateOutputConfig(&cfg.Output); err != nil {
		return fmt.Errorf("output configuration error: %w", err)
	}

	return nil
}

// validateDriveConfig validates the drive section.
func validateDriveConfig(drive *models.DriveConfig) error {
	validDateFields := map[string]bool{models.DateFieldCreated: true, models.DateFieldModified: true, "": true}
	if !validDateFields[drive.DateField] {
		return fmt.Errorf("invalid date_field %q (supported: created, modified)", drive.DateField)
	}

	// The Drive API rejects page sizes above 1000.
	if drive.PageSize < 0 || drive.PageSize > 1000 {
		return fmt.Errorf("page_size must be between 0 and 1000, got %d", drive.PageSize)
	}

	if drive.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative, got %d", drive.MaxResults)
	}

	return nil
}

// validateExtractConfig validates the extract section.
func validateExtractConfig(extract *models.ExtractConfig) error {
	validFormats := map[string]bool{"txt": true, "md": true, "": true}
	if !validFormats[extract.Format] {
		return fmt.Errorf("invalid format %q (supported: txt, md)", extract.Format)
	}

	return nil
}

// validateOutputConfig validates the output section.
func validateOutputConfig(output *models.OutputConfig) error {
	validListingFormats := map[string]bool{"csv": true, "xlsx": true, "": true}
	if !validListingFormats[output.ListingFormat] {
		return fmt.Errorf("invalid listing_format %q (supported: csv, xlsx)", output.ListingFormat)
	}

	return nil
}
