package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRedactingHandler - Attribute sanitization
// ---------------------------------------------------------------------------

func TestRedactingHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "authorization header", key: "Authorization", value: "abc"},
		{name: "password", key: "password", value: "hunter2"},
		{name: "keyword match", key: "github_token", value: "ghp_x"},
		{name: "bearer value", key: "header", value: "Bearer abc.def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, slog.LevelDebug, "text")
			logger.Info("msg", tt.key, tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("log output leaked %q: %s", tt.value, out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("log output missing mask: %s", out)
			}
		})
	}
}

func TestRedactingHandler_KeepsHarmlessAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "text")
	logger.Info("download", "path", "/tmp/out.png", "attempt", 2)

	out := buf.String()
	if !strings.Contains(out, "/tmp/out.png") || !strings.Contains(out, "attempt=2") {
		t.Errorf("harmless attrs altered: %s", out)
	}
}

func TestRedactingHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json").With("secret", "s3cr3t")
	logger.Info("msg", slog.Group("req", slog.String("cookie", "sid=1")))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["secret"] != MaskValue {
		t.Errorf("secret = %v, want masked", record["secret"])
	}
	group, ok := record["req"].(map[string]any)
	if !ok {
		t.Fatalf("req group missing: %v", record)
	}
	if group["cookie"] != MaskValue {
		t.Errorf("req.cookie = %v, want masked", group["cookie"])
	}
}

func TestRedactingHandler_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, "text")
	logger.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestRedactURL - URL sanitization
// ---------------------------------------------------------------------------

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		contains string
		absent   string
	}{
		{name: "userinfo", in: "https://bob:pw@example.com/a.png", contains: "example.com/a.png", absent: "pw"},
		{name: "signed query", in: "https://cdn.test/a.png?sig=abc123&w=10", contains: "w=10", absent: "abc123"},
		{name: "plain", in: "https://example.com/a.png?w=10", contains: "https://example.com/a.png?w=10"},
		{name: "not a url", in: "images/a.png", contains: "images/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RedactURL(tt.in)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("RedactURL(%q) = %q, want to contain %q", tt.in, got, tt.contains)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("RedactURL(%q) = %q, leaked %q", tt.in, got, tt.absent)
			}
		})
	}
}

func TestRedactingHandler_URLAttribute(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "text").Info("fetch", "url", "https://x.test/f.png?token=zzz")

	if strings.Contains(buf.String(), "zzz") {
		t.Errorf("url token leaked: %s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestParseLevel
// ---------------------------------------------------------------------------

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	if Discard().Enabled(t.Context(), slog.LevelError) {
		t.Error("Discard logger should not be enabled")
	}
}
