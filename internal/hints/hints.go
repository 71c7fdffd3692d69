// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a CI environment variable is set.
func InCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// sandboxDisabled reports whether either sandbox switch is already set.
func sandboxDisabled() bool {
	return os.Getenv("DOCTOOLS_NO_SANDBOX") == "1" || os.Getenv("ROD_NO_SANDBOX") == "1"
}

// browserBinSet reports whether a custom Chrome binary is configured.
func browserBinSet() bool {
	return os.Getenv("DOCTOOLS_BROWSER_BIN") != "" || os.Getenv("ROD_BROWSER_BIN") != ""
}

// ForBrowserConnect returns hints for browser connection errors.
// Suggests the sandbox switch in CI/Docker and a custom binary when none is set.
func ForBrowserConnect() string {
	var hints []string

	if (InCI() || IsInContainer()) && !sandboxDisabled() {
		hints = append(hints, "set DOCTOOLS_NO_SANDBOX=1 for Docker/CI")
	}
	if !browserBinSet() {
		hints = append(hints, "set DOCTOOLS_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("raise render.timeout in the config or DOCTOOLS_RENDER_TIMEOUT")
}

// ForDownload returns a hint for downloads that failed after every retry.
func ForDownload() string {
	return format("check the URL is reachable; raise fetch.retries for flaky hosts")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and one of the searched XDG paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/doctools") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
