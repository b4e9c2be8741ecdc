package models

// Config represents the application configuration.
type Config struct {
	// Drive search settings
	Drive DriveConfig `json:"drive" yaml:"drive"`

	// Content extraction settings
	Extract ExtractConfig `json:"extract" yaml:"extract"`

	// Tabular output settings
	Output OutputConfig `json:"output" yaml:"output"`

	// Results archive settings
	Archive ArchiveConfig `json:"archive" yaml:"archive"`

	// Authentication settings
	Auth AuthConfig `json:"auth" yaml:"auth"`
}

// DriveConfig defines defaults for Drive searches. CLI flags override every
// field here.
type DriveConfig struct {
	// Folders to search; empty = entire drive
	FolderIDs []string `json:"folder_ids" yaml:"folder_ids"`

	// Recurse into subfolders (default: true)
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Include shared-drive items on list and metadata calls
	IncludeSharedDrives bool `json:"include_shared_drives" yaml:"include_shared_drives"`

	// Which timestamp the date window applies to: "created" or "modified"
	DateField string `json:"date_field" yaml:"date_field"`

	// Default window when --start is not given, e.g. "7d", "today"
	DefaultSince string `json:"default_since" yaml:"default_since"`

	// Type tags to filter by ("gdoc", "pdf", "image", ...); empty = all
	FileTypes []string `json:"file_types" yaml:"file_types"`

	// Filename keyword filters
	IncludeKeywords []string `json:"include_keywords" yaml:"include_keywords"`
	ExcludeKeywords []string `json:"exclude_keywords" yaml:"exclude_keywords"`

	// Results per list call (default 1000, the API maximum)
	PageSize int `json:"page_size" yaml:"page_size"`

	// Cap on total results per search; 0 = unlimited
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExtractConfig defines content extraction preferences.
type ExtractConfig struct {
	// Export format for native documents: "txt" (default) or "md"
	Format string `json:"format" yaml:"format"`
}

// OutputConfig defines where and how tabular results are written.
type OutputConfig struct {
	// Directory for generated files (default: "./output")
	Dir string `json:"dir" yaml:"dir"`

	// Listing file format: "csv" (default) or "xlsx"
	ListingFormat string `json:"listing_format" yaml:"listing_format"`

	// Write full content into the combined results file; false keeps a
	// fixed-length preview column instead
	IncludeContent bool `json:"include_content" yaml:"include_content"`
}

// ArchiveConfig defines the SQLite results archive.
type ArchiveConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path to the archive database (default: <config dir>/archive.db)
	DBPath string `json:"db_path" yaml:"db_path"`
}

// AuthConfig defines credential locations.
type AuthConfig struct {
	// Path to the Google credential file; both OAuth client and service
	// account shapes are recognized
	CredentialsPath string `json:"credentials_path" yaml:"credentials_path"`

	// Path where the OAuth token is cached (unused for service accounts)
	TokenPath string `json:"token_path" yaml:"token_path"`
}
