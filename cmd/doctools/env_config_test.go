package main

// Notes:
// - Tests use t.Setenv() which prevents t.Parallel().
// - Invalid numbers, durations and booleans are ignored, not errors.

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-doctools/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("all variables", func(t *testing.T) {
		t.Setenv("DOCTOOLS_CONFIG", "team")
		t.Setenv("DOCTOOLS_LOG_LEVEL", "debug")
		t.Setenv("DOCTOOLS_LOG_FORMAT", "json")
		t.Setenv("DOCTOOLS_FETCH_RETRIES", "5")
		t.Setenv("DOCTOOLS_FETCH_TIMEOUT", "20s")
		t.Setenv("DOCTOOLS_FETCH_INSECURE", "false")
		t.Setenv("DOCTOOLS_RENDER_TIMEOUT", "1m")
		t.Setenv("DOCTOOLS_RENDER_WORKERS", "2")
		t.Setenv("DOCTOOLS_BROWSER_BIN", "/usr/bin/chromium")
		t.Setenv("DOCTOOLS_NO_SANDBOX", "1")
		t.Setenv("DOCTOOLS_TABLE_STYLE", "compact")
		t.Setenv("DOCTOOLS_ASSET_PATH", "/srv/assets")
		t.Setenv("DOCTOOLS_TRANSPORT", "http")
		t.Setenv("DOCTOOLS_ADDR", "127.0.0.1:9000")

		cfg := loadEnvConfig()

		if cfg.ConfigPath != "team" {
			t.Errorf("ConfigPath = %q, want team", cfg.ConfigPath)
		}
		if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
			t.Errorf("Log = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.FetchRetries != 5 {
			t.Errorf("FetchRetries = %d, want 5", cfg.FetchRetries)
		}
		if cfg.FetchTimeout != 20*time.Second {
			t.Errorf("FetchTimeout = %v, want 20s", cfg.FetchTimeout)
		}
		if cfg.FetchInsecure == nil || *cfg.FetchInsecure {
			t.Errorf("FetchInsecure = %v, want false", cfg.FetchInsecure)
		}
		if cfg.RenderTimeout != time.Minute {
			t.Errorf("RenderTimeout = %v, want 1m", cfg.RenderTimeout)
		}
		if cfg.RenderWorkers != 2 {
			t.Errorf("RenderWorkers = %d, want 2", cfg.RenderWorkers)
		}
		if cfg.BrowserBin != "/usr/bin/chromium" {
			t.Errorf("BrowserBin = %q", cfg.BrowserBin)
		}
		if !cfg.NoSandbox {
			t.Error("NoSandbox = false, want true")
		}
		if cfg.TableStyle != "compact" || cfg.AssetPath != "/srv/assets" {
			t.Errorf("TableStyle/AssetPath = %q/%q", cfg.TableStyle, cfg.AssetPath)
		}
		if cfg.Transport != "http" || cfg.Addr != "127.0.0.1:9000" {
			t.Errorf("Transport/Addr = %q/%q", cfg.Transport, cfg.Addr)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		t.Setenv("DOCTOOLS_FETCH_RETRIES", "many")
		t.Setenv("DOCTOOLS_RENDER_WORKERS", "-2")
		t.Setenv("DOCTOOLS_FETCH_TIMEOUT", "soon")
		t.Setenv("DOCTOOLS_RENDER_TIMEOUT", "-5s")
		t.Setenv("DOCTOOLS_FETCH_INSECURE", "maybe")
		t.Setenv("DOCTOOLS_NO_SANDBOX", "yes please")

		cfg := loadEnvConfig()

		if cfg.FetchRetries != 0 || cfg.RenderWorkers != 0 {
			t.Errorf("ints = %d/%d, want 0/0", cfg.FetchRetries, cfg.RenderWorkers)
		}
		if cfg.FetchTimeout != 0 || cfg.RenderTimeout != 0 {
			t.Errorf("durations = %v/%v, want 0/0", cfg.FetchTimeout, cfg.RenderTimeout)
		}
		if cfg.FetchInsecure != nil {
			t.Errorf("FetchInsecure = %v, want nil", *cfg.FetchInsecure)
		}
		if cfg.NoSandbox {
			t.Error("NoSandbox = true, want false")
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Unknown variable detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Run("warns on unknown DOCTOOLS_ vars", func(t *testing.T) {
		t.Setenv("DOCTOOLS_RETRIES", "3")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		want := "warning: unknown environment variable DOCTOOLS_RETRIES (typo?)"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("known vars do not warn", func(t *testing.T) {
		t.Setenv("DOCTOOLS_FETCH_RETRIES", "3")
		t.Setenv("DOCTOOLS_NO_SANDBOX", "1")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if strings.Contains(buf.String(), "DOCTOOLS_FETCH_RETRIES") || strings.Contains(buf.String(), "DOCTOOLS_NO_SANDBOX") {
			t.Errorf("known vars should not warn, got: %s", buf.String())
		}
	})

	t.Run("other prefixes ignored", func(t *testing.T) {
		t.Setenv("ROD_NO_SANDBOX", "1")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if strings.Contains(buf.String(), "ROD_NO_SANDBOX") {
			t.Errorf("non-DOCTOOLS vars should not warn, got: %s", buf.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Fetch.Retries = 2
		cfg.Render.TableStyle = "default"
		insecure := false

		applyEnvConfig(&envConfig{
			FetchRetries:  7,
			FetchInsecure: &insecure,
			TableStyle:    "compact",
			NoSandbox:     true,
			Transport:     config.TransportHTTP,
		}, cfg)

		if cfg.Fetch.Retries != 7 {
			t.Errorf("Fetch.Retries = %d, want 7", cfg.Fetch.Retries)
		}
		if cfg.Fetch.SkipTLSVerify() {
			t.Error("SkipTLSVerify() = true, want false")
		}
		if cfg.Render.TableStyle != "compact" {
			t.Errorf("Render.TableStyle = %q, want compact", cfg.Render.TableStyle)
		}
		if !cfg.Render.NoSandbox {
			t.Error("Render.NoSandbox = false, want true")
		}
		if cfg.Server.Transport != config.TransportHTTP {
			t.Errorf("Server.Transport = %q, want http", cfg.Server.Transport)
		}
	})

	t.Run("unset values keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Fetch.Retries = 2
		cfg.Render.BrowserBin = "/opt/chrome"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Fetch.Retries != 2 {
			t.Errorf("Fetch.Retries = %d, want 2", cfg.Fetch.Retries)
		}
		if cfg.Render.BrowserBin != "/opt/chrome" {
			t.Errorf("Render.BrowserBin = %q, want /opt/chrome", cfg.Render.BrowserBin)
		}
		if !cfg.Fetch.SkipTLSVerify() {
			t.Error("SkipTLSVerify() = false, want default true")
		}
	})
}
