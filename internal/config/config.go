package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDirName is the directory under the user config directory that holds
// named configs and, by default, the history file.
const AppDirName = "go-md2doc"

// Field length limits.
const (
	MaxTitleLength  = 200  // Document <title>
	MaxPrefixLength = 100  // Artifact file name prefix
	MaxPathLength   = 4096 // Directories and files
	MaxAddrLength   = 255  // host:port
	MaxOriginLength = 2048 // CORS origin URL
)

// Numeric bounds.
const (
	MaxHistoryLimit = 1000
	MaxBodyBytes    = 32 << 20
	MaxWorkers      = 64
)

// Defaults.
const (
	DefaultPrefix        = "document"
	DefaultTitle         = "Document"
	DefaultHistoryLimit  = 20
	DefaultHistoryFormat = "YYYY-MM-DD HH:mm"
	DefaultAddr          = "localhost:8080"
	DefaultMaxBodyBytes  = 1 << 20
)

// Config holds all configuration for the CLI and the HTTP server.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Document DocumentConfig `yaml:"document"`
	History  HistoryConfig  `yaml:"history"`
	Server   ServerConfig   `yaml:"server"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = current directory
	Prefix     string `yaml:"prefix"`     // Artifact name prefix (default: "document")
}

// DocumentConfig defines rendering options.
type DocumentConfig struct {
	Title     string `yaml:"title"`     // <title> of the document (default: "Document")
	Highlight bool   `yaml:"highlight"` // Color fenced code that names a language
}

// HistoryConfig defines the conversion history store.
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`       // Empty = <user config dir>/go-md2doc/history.yaml
	Limit      int    `yaml:"limit"`      // Records kept, newest first (default: 20)
	DateFormat string `yaml:"dateFormat"` // Listing timestamp format, see dateutil
}

// ServerConfig defines the HTTP server.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	CORSOrigins  []string `yaml:"corsOrigins"`  // Empty = CORS disabled
	MaxBodyBytes int64    `yaml:"maxBodyBytes"` // Request body cap
	Workers      int      `yaml:"workers"`      // Concurrent conversions (0 = auto)
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.prefix", c.Output.Prefix, MaxPrefixLength); err != nil {
		return err
	}
	if c.Output.Prefix != "" {
		if err := fileutil.ValidateFilename(c.Output.Prefix); err != nil {
			return fmt.Errorf("%w: output.prefix: %v", ErrInvalidValue, err)
		}
	}

	if err := validateFieldLength("document.title", c.Document.Title, MaxTitleLength); err != nil {
		return err
	}

	if err := validateFieldLength("history.path", c.History.Path, MaxPathLength); err != nil {
		return err
	}
	if c.History.Limit < 0 || c.History.Limit > MaxHistoryLimit {
		return fmt.Errorf("%w: history.limit must be between 0 and %d, got %d", ErrInvalidValue, MaxHistoryLimit, c.History.Limit)
	}
	if c.History.DateFormat != "" {
		if _, err := dateutil.Compile(c.History.DateFormat); err != nil {
			return fmt.Errorf("history.dateFormat: %w", err)
		}
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	for i, origin := range c.Server.CORSOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.corsOrigins[%d]", i), origin, MaxOriginLength); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes < 0 || c.Server.MaxBodyBytes > MaxBodyBytes {
		return fmt.Errorf("%w: server.maxBodyBytes must be between 0 and %d, got %d", ErrInvalidValue, MaxBodyBytes, c.Server.MaxBodyBytes)
	}
	if c.Server.Workers < 0 || c.Server.Workers > MaxWorkers {
		return fmt.Errorf("%w: server.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Server.Workers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output:   OutputConfig{Prefix: DefaultPrefix},
		Document: DocumentConfig{Title: DefaultTitle},
		History: HistoryConfig{
			Enabled:    true,
			Limit:      DefaultHistoryLimit,
			DateFormat: DefaultHistoryFormat,
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg, yamlutil.MaxConfigSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultHistoryPath returns <user config dir>/go-md2doc/history.yaml.
func DefaultHistoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, AppDirName, "history.yaml"), nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-md2doc/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
