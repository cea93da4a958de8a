package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories
	DirPermissions = 0755

	// DefaultServerURL is used when neither the flag nor the settings file
	// provides a server address.
	DefaultServerURL = "http://localhost:5000"
)

var (
	// ConfigDir is the global configuration directory (~/.dbcstudio)
	ConfigDir string

	// SettingsFile is the YAML settings file
	SettingsFile string

	// JournalPath is the SQLite database file for the mutation journal
	JournalPath string

	// DownloadsDir is where exported DBC files are written
	DownloadsDir string
)

// Settings holds the persisted editor configuration.
type Settings struct {
	ServerURL string `yaml:"serverUrl"`
	// MessageTimeoutSec clears transient footer notifications after this
	// many seconds; 0 keeps them until replaced.
	MessageTimeoutSec int    `yaml:"messageTimeoutSec"`
	ReportPath        string `yaml:"reportPath,omitempty"`
}

// Initialize sets up the configuration directory and files, creating
// ~/.dbcstudio/ and a default settings file on first run.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".dbcstudio")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	JournalPath = filepath.Join(ConfigDir, "journal.db")
	DownloadsDir = filepath.Join(ConfigDir, "downloads")

	for _, dir := range []string{ConfigDir, DownloadsDir} {
		if err := os.MkdirAll(dir, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		defaults := Settings{ServerURL: DefaultServerURL, MessageTimeoutSec: 4}
		if err := SaveSettings(&defaults); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// LoadSettings reads the settings file, filling defaults for missing fields.
func LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(SettingsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}
	return &s, nil
}

// SaveSettings writes the settings file.
func SaveSettings(s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(SettingsFile, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
