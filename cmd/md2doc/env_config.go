package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-md2doc/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string   // MD2DOC_CONFIG: config file name or path
	OutputDir   string   // MD2DOC_OUTPUT_DIR: artifact directory
	Prefix      string   // MD2DOC_PREFIX: artifact file name prefix
	Title       string   // MD2DOC_TITLE: document title
	HistoryPath string   // MD2DOC_HISTORY_PATH: history file
	History     *bool    // MD2DOC_HISTORY: enable or disable history
	Addr        string   // MD2DOC_ADDR: server listen address
	CORSOrigins []string // MD2DOC_CORS_ORIGINS: comma-separated origins
}

// knownEnvVars lists valid MD2DOC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2DOC_CONFIG":       true,
	"MD2DOC_OUTPUT_DIR":   true,
	"MD2DOC_PREFIX":       true,
	"MD2DOC_TITLE":        true,
	"MD2DOC_HISTORY_PATH": true,
	"MD2DOC_HISTORY":      true,
	"MD2DOC_ADDR":         true,
	"MD2DOC_CORS_ORIGINS": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed boolean values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("MD2DOC_CONFIG"),
		OutputDir:   os.Getenv("MD2DOC_OUTPUT_DIR"),
		Prefix:      os.Getenv("MD2DOC_PREFIX"),
		Title:       os.Getenv("MD2DOC_TITLE"),
		HistoryPath: os.Getenv("MD2DOC_HISTORY_PATH"),
		Addr:        os.Getenv("MD2DOC_ADDR"),
	}

	if v := os.Getenv("MD2DOC_HISTORY"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.History = &enabled
		}
	}

	if v := os.Getenv("MD2DOC_CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2DOC_* variables.
// Helps catch typos like MD2DOC_OUTPUTDIR instead of MD2DOC_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MD2DOC_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment variables over config values.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Prefix != "" {
		cfg.Output.Prefix = env.Prefix
	}
	if env.Title != "" {
		cfg.Document.Title = env.Title
	}
	if env.HistoryPath != "" {
		cfg.History.Path = env.HistoryPath
	}
	if env.History != nil {
		cfg.History.Enabled = *env.History
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file named by --config or MD2DOC_CONFIG, then environment
// overrides. The result is validated again since env values bypass the
// file checks.
func loadConfig(flagConfig string, w io.Writer) (*config.Config, error) {
	warnUnknownEnvVars(w)
	env := loadEnvConfig()

	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
