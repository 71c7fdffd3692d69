// Package config loads and validates doctools configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// AppName names the XDG configuration subdirectory.
const AppName = "doctools"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Bounds for numeric fields.
const (
	MinRetries   = 1
	MaxRetries   = 10
	MinChunkSize = 512
	MaxChunkSize = 1 << 20
	MaxWorkers   = 8
	MaxUserAgent = 512
)

// Defaults.
const (
	DefaultRetries       = 3
	DefaultBackoff       = time.Second
	DefaultChunkSize     = 8192
	DefaultRenderTimeout = 30 * time.Second
	DefaultServerName    = "doctools"
	DefaultTransport     = TransportStdio
	DefaultAddr          = ":8080"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Transport names accepted by server.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for the tool server and CLI.
type Config struct {
	Fetch  FetchConfig  `yaml:"fetch"`
	Render RenderConfig `yaml:"render"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// FetchConfig configures the download tool.
type FetchConfig struct {
	Retries            int           `yaml:"retries"`            // attempts per download (default: 3)
	Backoff            time.Duration `yaml:"backoff"`            // base delay; attempt i sleeps i*backoff
	ChunkSize          int           `yaml:"chunkSize"`          // bytes per streamed write (default: 8192)
	Timeout            time.Duration `yaml:"timeout"`            // per-attempt timeout, 0 = none
	InsecureSkipVerify *bool         `yaml:"insecureSkipVerify"` // default: true
	UserAgents         []string      `yaml:"userAgents"`         // empty = built-in pool
}

// RenderConfig configures browser rasterization.
type RenderConfig struct {
	Timeout    time.Duration `yaml:"timeout"`    // page load timeout (default: 30s)
	Workers    int           `yaml:"workers"`    // browser instances, 0 = auto
	BrowserBin string        `yaml:"browserBin"` // custom Chrome binary
	NoSandbox  bool          `yaml:"noSandbox"`
	TableStyle string        `yaml:"tableStyle"` // style name, CSS file path, or inline CSS
	AssetPath  string        `yaml:"assetPath"`  // override directory for styles/
}

// ServerConfig configures the MCP tool server.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // "stdio" or "http"
	Addr      string `yaml:"addr"`      // listen address for http
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Retries:   DefaultRetries,
			Backoff:   DefaultBackoff,
			ChunkSize: DefaultChunkSize,
		},
		Render: RenderConfig{
			Timeout: DefaultRenderTimeout,
		},
		Server: ServerConfig{
			Name:      DefaultServerName,
			Transport: DefaultTransport,
			Addr:      DefaultAddr,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// SkipTLSVerify reports whether downloads skip certificate verification.
func (f FetchConfig) SkipTLSVerify() bool {
	if f.InsecureSkipVerify == nil {
		return true
	}
	return *f.InsecureSkipVerify
}

// ApplyDefaults fills zero-valued fields with defaults.
// Called after decoding so partial files stay valid.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Fetch.Retries == 0 {
		c.Fetch.Retries = def.Fetch.Retries
	}
	if c.Fetch.Backoff == 0 {
		c.Fetch.Backoff = def.Fetch.Backoff
	}
	if c.Fetch.ChunkSize == 0 {
		c.Fetch.ChunkSize = def.Fetch.ChunkSize
	}
	if c.Render.Timeout == 0 {
		c.Render.Timeout = def.Render.Timeout
	}
	if c.Server.Name == "" {
		c.Server.Name = def.Server.Name
	}
	if c.Server.Transport == "" {
		c.Server.Transport = def.Server.Transport
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks every field against its bounds.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	if c.Fetch.Retries < MinRetries || c.Fetch.Retries > MaxRetries {
		return fmt.Errorf("%w: fetch.retries must be between %d and %d, got %d", ErrInvalidValue, MinRetries, MaxRetries, c.Fetch.Retries)
	}
	if c.Fetch.Backoff < 0 {
		return fmt.Errorf("%w: fetch.backoff must not be negative", ErrInvalidValue)
	}
	if c.Fetch.ChunkSize < MinChunkSize || c.Fetch.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: fetch.chunkSize must be between %d and %d, got %d", ErrInvalidValue, MinChunkSize, MaxChunkSize, c.Fetch.ChunkSize)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must not be negative", ErrInvalidValue)
	}
	for i, ua := range c.Fetch.UserAgents {
		if strings.TrimSpace(ua) == "" {
			return fmt.Errorf("%w: fetch.userAgents[%d] is empty", ErrInvalidValue, i)
		}
		if len(ua) > MaxUserAgent {
			return fmt.Errorf("%w: fetch.userAgents[%d] exceeds %d chars", ErrInvalidValue, i, MaxUserAgent)
		}
	}

	if c.Render.Timeout <= 0 {
		return fmt.Errorf("%w: render.timeout must be positive", ErrInvalidValue)
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}

	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: server.transport %q (must be stdio or http)", ErrInvalidValue, c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr required for http transport", ErrInvalidValue)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
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

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists the candidate files for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	for _, ext := range extensions {
		paths = append(paths, filepath.Join(xdg.ConfigHome, AppName, name+ext))
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory first, then $XDG_CONFIG_HOME/doctools/.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
