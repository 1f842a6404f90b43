package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration. APIToken, when
// set, is required as a bearer token on API requests.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Library contains configuration for the document library database.
type Library struct {
	DBPath    string `toml:"db_path"`
	LibraryID int64  `toml:"library_id"`
}

// Extractor contains configuration for the text extraction tool.
type Extractor struct {
	Pdftotext      string `toml:"pdftotext"`
	PageLimit      int    `toml:"page_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Recognition contains configuration for the remote recognition service.
type Recognition struct {
	ServiceURL     string `toml:"service_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Lookup contains configuration for identifier lookups (DOI and ISBN).
type Lookup struct {
	CrossrefBaseURL    string `toml:"crossref_base_url"`
	OpenLibraryBaseURL string `toml:"openlibrary_base_url"`
	Mailto             string `toml:"mailto"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// Workflow contains configuration for the queue worker.
type Workflow struct {
	OfflineBackoffSeconds      int    `toml:"offline_backoff_seconds"`
	ConnectivityURL            string `toml:"connectivity_url"`
	ConnectivityTimeoutSeconds int    `toml:"connectivity_timeout_seconds"`
	WatchNetworkEvents         bool   `toml:"watch_network_events"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Messages contains configuration for user-facing strings.
type Messages struct {
	Language string `toml:"language"`
}

// Config encapsulates all configuration values for the recognizer.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Library: SQLite document library location
//   - Extractor: pdftotext binary and page limit
//   - Recognition: remote recognition endpoint
//   - Lookup: Crossref and Open Library endpoints
//   - Workflow: offline backoff and connectivity probing
//   - Logging: log format and level
//   - Messages: display language for row messages
type Config struct {
	Paths       Paths       `toml:"paths"`
	Library     Library     `toml:"library"`
	Extractor   Extractor   `toml:"extractor"`
	Recognition Recognition `toml:"recognition"`
	Lookup      Lookup      `toml:"lookup"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
	Messages    Messages    `toml:"messages"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recognizer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, storage, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.StorageDir(), c.Paths.LogDir, filepath.Dir(c.Library.DBPath)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorageDir is where imported attachment files are kept.
func (c *Config) StorageDir() string {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.DataDir, "storage")
}

// LockPath returns the single-instance lock file used by the API server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "recognizer.lock")
}

// ExtractorTimeout returns the per-document extraction deadline.
func (c *Config) ExtractorTimeout() time.Duration {
	return time.Duration(c.Extractor.TimeoutSeconds) * time.Second
}

// RecognitionTimeout returns the HTTP timeout for recognition requests.
func (c *Config) RecognitionTimeout() time.Duration {
	return time.Duration(c.Recognition.TimeoutSeconds) * time.Second
}

// LookupTimeout returns the HTTP timeout for identifier lookups.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

// OfflineBackoff is how long the worker sleeps before re-checking connectivity.
func (c *Config) OfflineBackoff() time.Duration {
	return time.Duration(c.Workflow.OfflineBackoffSeconds) * time.Second
}

// ConnectivityTimeout bounds a single connectivity probe.
func (c *Config) ConnectivityTimeout() time.Duration {
	return time.Duration(c.Workflow.ConnectivityTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
