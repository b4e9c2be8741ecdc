package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	CredentialsFileName = "credentials.json"
	TokenFileName       = "token.json"
	ArchiveFileName     = "archive.db"
)

var (
	customConfigDir       string
	customCredentialsPath string
	customTokenPath       string
)

// SetCustomConfigDir overrides the configuration directory (--config-dir).
func SetCustomConfigDir(dir string) {
	customConfigDir = dir
}

// SetCustomCredentialsPath overrides credentials file resolution (--credentials).
func SetCustomCredentialsPath(path string) {
	customCredentialsPath = path
}

// SetCustomTokenPath overrides token file resolution (--token).
func SetCustomTokenPath(path string) {
	customTokenPath = path
}

// GetConfigDir returns the global configuration directory.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine user config directory: %w", err)
	}

	return filepath.Join(configDir, "drive-harvest"), nil
}

// effectiveConfigDir is the directory auth and archive files live in: the
// custom dir when set, the global dir otherwise.
func effectiveConfigDir() (string, error) {
	if customConfigDir != "" {
		return customConfigDir, nil
	}

	return GetConfigDir()
}

// GetCredentialsPath resolves the credentials file. An explicit override
// wins; otherwise the config directory and then the current directory are
// searched for credentials.json.
func GetCredentialsPath() (string, error) {
	if customCredentialsPath != "" {
		return customCredentialsPath, nil
	}

	var searched []string

	if dir, err := effectiveConfigDir(); err == nil {
		path := filepath.Join(dir, CredentialsFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		searched = append(searched, path)
	}

	if _, err := os.Stat(CredentialsFileName); err == nil {
		return CredentialsFileName, nil
	}

	searched = append(searched, CredentialsFileName)

	return "", fmt.Errorf("no credentials file found (searched %v); pass --credentials or place %s in the config directory",
		searched, CredentialsFileName)
}

// GetTokenPath resolves where the cached OAuth token is read from and
// written to. Unlike credentials, the token file does not need to exist yet.
func GetTokenPath() (string, error) {
	if customTokenPath != "" {
		return customTokenPath, nil
	}

	dir, err := effectiveConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, TokenFileName), nil
}

// GetArchivePath resolves the archive database location, preferring the
// configured path when one is set.
func GetArchivePath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	dir, err := effectiveConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, ArchiveFileName), nil
}
