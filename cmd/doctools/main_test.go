package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-doctools/internal/config"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// cliResult captures one CLI invocation.
type cliResult struct {
	code   int
	stdout string
	stderr string
	env    *Environment
}

// runCLI runs the command line with in-memory I/O.
func runCLI(ctx context.Context, stdin string, args ...string) cliResult {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Config: config.DefaultConfig(),
		Logger: doclog.Discard(),
	}
	code := run(ctx, args, env)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String(), env: env}
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRun_Version - Version and help
// ---------------------------------------------------------------------------

func TestRun_Version(t *testing.T) {
	t.Parallel()

	res := runCLI(context.Background(), "", "version")

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	if res.stdout != "doctools "+Version+"\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestRun_VersionIgnoresBrokenConfig(t *testing.T) {
	t.Parallel()

	res := runCLI(context.Background(), "", "version", "--config", "/nonexistent/tools.yaml")
	if res.code != ExitSuccess {
		t.Errorf("exit = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
}

func TestRun_HelpListsCommands(t *testing.T) {
	t.Parallel()

	res := runCLI(context.Background(), "", "--help")

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, want 0", res.code)
	}
	for _, name := range []string{"serve", "download", "table", "slide", "manuscript", "doctor", "version"} {
		if !strings.Contains(res.stdout, name) {
			t.Errorf("help should list %q:\n%s", name, res.stdout)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRun_UsageErrors - Flag and argument validation
// ---------------------------------------------------------------------------

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"manuscript", "--bogus", "a.md"}},
		{"missing argument", []string{"manuscript"}},
		{"extra argument", []string{"slide", "a.html", "b.html"}},
		{"odd download args", []string{"download", "https://example.com/a.png"}},
		{"zero jobs", []string{"download", "--jobs", "0", "https://example.com/a.png", "a.png"}},
		{"verbose and quiet", []string{"manuscript", "-v", "-q", "a.md"}},
		{"bad log format", []string{"manuscript", "--log-format", "xml", "a.md"}},
		{"non-integer page", []string{"manuscript", "--page", "two", "a.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(context.Background(), "", tt.args...)
			if res.code != ExitUsage {
				t.Errorf("exit = %d, want %d (stderr: %s)", res.code, ExitUsage, res.stderr)
			}
			if !strings.HasPrefix(res.stderr, "error: ") && !strings.Contains(res.stderr, "\nerror: ") {
				t.Errorf("stderr should report the error, got %q", res.stderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun_Config - Config layering
// ---------------------------------------------------------------------------

func TestRun_ConfigNotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	res := runCLI(context.Background(), "", "manuscript", "--config", "missing-team", "a.md")

	if res.code != ExitUsage {
		t.Fatalf("exit = %d, want %d", res.code, ExitUsage)
	}
	if !strings.Contains(res.stderr, "hint: use --config") {
		t.Errorf("stderr should carry a config hint, got %q", res.stderr)
	}
}

func TestRun_ConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "tools.yaml", "fetch:\n  retries: 5\nrender:\n  workers: 2\nlog:\n  format: json\n")
	md := writeFile(t, dir, "book.md", "# One\n")

	t.Setenv("DOCTOOLS_FETCH_RETRIES", "7")
	t.Setenv("DOCTOOLS_LOG_FORMAT", "json")

	res := runCLI(context.Background(), "", "manuscript", "--config", cfgPath, "--log-format", "text", "--verbose", md)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	cfg := res.env.Config
	if cfg.Fetch.Retries != 7 {
		t.Errorf("Fetch.Retries = %d, want 7 (env over file)", cfg.Fetch.Retries)
	}
	if cfg.Render.Workers != 2 {
		t.Errorf("Render.Workers = %d, want 2 (file over default)", cfg.Render.Workers)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text (flag over env)", cfg.Log.Format)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from --verbose", cfg.Log.Level)
	}
}

func TestRun_ConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "tools.yaml", "fetch:\n  retries: 4\n")
	md := writeFile(t, dir, "book.md", "# One\n")

	t.Setenv("DOCTOOLS_CONFIG", cfgPath)

	res := runCLI(context.Background(), "", "manuscript", md)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	if res.env.Config.Fetch.Retries != 4 {
		t.Errorf("Fetch.Retries = %d, want 4", res.env.Config.Fetch.Retries)
	}
}

func TestRun_WarnsUnknownEnvVars(t *testing.T) {
	md := writeFile(t, t.TempDir(), "book.md", "# One\n")
	t.Setenv("DOCTOOLS_RETRIES", "3")

	res := runCLI(context.Background(), "", "manuscript", md)

	if res.code != ExitSuccess {
		t.Fatalf("exit = %d, want 0 (stderr: %s)", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "DOCTOOLS_RETRIES (typo?)") {
		t.Errorf("stderr = %q, want unknown variable warning", res.stderr)
	}
}

func TestRun_UnknownTableStyle(t *testing.T) {
	md := writeFile(t, t.TempDir(), "book.md", "# One\n")
	t.Setenv("DOCTOOLS_TABLE_STYLE", "neon")

	res := runCLI(context.Background(), "", "manuscript", md)

	if res.code != ExitUsage {
		t.Fatalf("exit = %d, want %d", res.code, ExitUsage)
	}
	if !strings.Contains(res.stderr, "hint: available:") {
		t.Errorf("stderr = %q, want available styles hint", res.stderr)
	}
}
