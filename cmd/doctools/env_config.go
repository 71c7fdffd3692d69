package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-doctools/internal/config"
)

// envPrefix marks doctools environment variables.
const envPrefix = "DOCTOOLS_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// Zero values (and nil pointers) mean the variable is unset or invalid.
type envConfig struct {
	// Config selection and logging
	ConfigPath string // DOCTOOLS_CONFIG: config file path or name
	LogLevel   string // DOCTOOLS_LOG_LEVEL
	LogFormat  string // DOCTOOLS_LOG_FORMAT

	// Downloads
	FetchRetries  int           // DOCTOOLS_FETCH_RETRIES
	FetchTimeout  time.Duration // DOCTOOLS_FETCH_TIMEOUT: per-attempt timeout
	FetchInsecure *bool         // DOCTOOLS_FETCH_INSECURE: skip TLS verification

	// Rendering
	RenderTimeout time.Duration // DOCTOOLS_RENDER_TIMEOUT
	RenderWorkers int           // DOCTOOLS_RENDER_WORKERS
	BrowserBin    string        // DOCTOOLS_BROWSER_BIN
	NoSandbox     bool          // DOCTOOLS_NO_SANDBOX
	TableStyle    string        // DOCTOOLS_TABLE_STYLE
	AssetPath     string        // DOCTOOLS_ASSET_PATH

	// Server
	Transport string // DOCTOOLS_TRANSPORT
	Addr      string // DOCTOOLS_ADDR
}

// knownEnvVars lists valid DOCTOOLS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCTOOLS_CONFIG":         true,
	"DOCTOOLS_LOG_LEVEL":      true,
	"DOCTOOLS_LOG_FORMAT":     true,
	"DOCTOOLS_FETCH_RETRIES":  true,
	"DOCTOOLS_FETCH_TIMEOUT":  true,
	"DOCTOOLS_FETCH_INSECURE": true,
	"DOCTOOLS_RENDER_TIMEOUT": true,
	"DOCTOOLS_RENDER_WORKERS": true,
	"DOCTOOLS_BROWSER_BIN":    true,
	"DOCTOOLS_NO_SANDBOX":     true,
	"DOCTOOLS_TABLE_STYLE":    true,
	"DOCTOOLS_ASSET_PATH":     true,
	"DOCTOOLS_TRANSPORT":      true,
	"DOCTOOLS_ADDR":           true,
	"DOCTOOLS_CONTAINER":      true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers, durations and booleans are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("DOCTOOLS_CONFIG"),
		LogLevel:   os.Getenv("DOCTOOLS_LOG_LEVEL"),
		LogFormat:  os.Getenv("DOCTOOLS_LOG_FORMAT"),
		BrowserBin: os.Getenv("DOCTOOLS_BROWSER_BIN"),
		TableStyle: os.Getenv("DOCTOOLS_TABLE_STYLE"),
		AssetPath:  os.Getenv("DOCTOOLS_ASSET_PATH"),
		Transport:  os.Getenv("DOCTOOLS_TRANSPORT"),
		Addr:       os.Getenv("DOCTOOLS_ADDR"),
	}

	cfg.FetchRetries = envInt("DOCTOOLS_FETCH_RETRIES")
	cfg.RenderWorkers = envInt("DOCTOOLS_RENDER_WORKERS")
	cfg.FetchTimeout = envDuration("DOCTOOLS_FETCH_TIMEOUT")
	cfg.RenderTimeout = envDuration("DOCTOOLS_RENDER_TIMEOUT")

	if v, ok := envBool("DOCTOOLS_FETCH_INSECURE"); ok {
		cfg.FetchInsecure = &v
	}
	if v, ok := envBool("DOCTOOLS_NO_SANDBOX"); ok {
		cfg.NoSandbox = v
	}

	return cfg
}

// envInt parses a positive integer variable.
func envInt(name string) int {
	if raw := os.Getenv(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// envDuration parses a positive duration variable.
func envDuration(name string) time.Duration {
	if raw := os.Getenv(name); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// envBool parses a boolean variable ("1", "true", "0", "false", ...).
func envBool(name string) (value, ok bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// warnUnknownEnvVars prints warnings for unrecognized DOCTOOLS_* variables.
// Helps catch typos like DOCTOOLS_RETRIES instead of DOCTOOLS_FETCH_RETRIES.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with the variables that are set.
// Flags are applied afterwards, giving: flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}

	if env.FetchRetries > 0 {
		cfg.Fetch.Retries = env.FetchRetries
	}
	if env.FetchTimeout > 0 {
		cfg.Fetch.Timeout = env.FetchTimeout
	}
	if env.FetchInsecure != nil {
		v := *env.FetchInsecure
		cfg.Fetch.InsecureSkipVerify = &v
	}

	if env.RenderTimeout > 0 {
		cfg.Render.Timeout = env.RenderTimeout
	}
	if env.RenderWorkers > 0 {
		cfg.Render.Workers = env.RenderWorkers
	}
	if env.BrowserBin != "" {
		cfg.Render.BrowserBin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Render.NoSandbox = true
	}
	if env.TableStyle != "" {
		cfg.Render.TableStyle = env.TableStyle
	}
	if env.AssetPath != "" {
		cfg.Render.AssetPath = env.AssetPath
	}

	if env.Transport != "" {
		cfg.Server.Transport = env.Transport
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
}
