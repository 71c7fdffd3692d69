package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteConfig holds RewriteRelativePaths settings.
type rewriteConfig struct {
	allowParent bool
}

// RewriteOption configures RewriteRelativePaths.
type RewriteOption func(*rewriteConfig)

// AllowParentRefs lets "../" references escape sourceDir.
// Slides commonly share an images directory with sibling slides.
func AllowParentRefs() RewriteOption {
	return func(c *rewriteConfig) { c.allowParent = true }
}

// rewriteTargets maps element names to the attributes holding asset paths.
// script[src] and srcset are never rewritten.
var rewriteTargets = map[string][]string{
	"img":    {"src"},
	"a":      {"href"},
	"link":   {"href"},
	"source": {"src"},
	"video":  {"poster"},
}

// RewriteRelativePaths converts relative asset paths to absolute file:// URLs.
// If sourceDir is empty, returns the HTML unchanged.
// Paths resolving outside sourceDir are left untouched unless AllowParentRefs is set.
func RewriteRelativePaths(htmlContent, sourceDir string, opts ...RewriteOption) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	cfg := rewriteConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, absSourceDir, cfg)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	if isFullDocument(content) {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// isFullDocument reports whether content starts with <!DOCTYPE or <html.
func isFullDocument(content string) bool {
	lower := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// renderHTML renders the document back to string.
// Fragments render only their children.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, sourceDir string, cfg rewriteConfig) {
	if n.Type == html.ElementNode {
		for _, attr := range rewriteTargets[n.Data] {
			rewriteAttr(n, attr, sourceDir, cfg)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, sourceDir, cfg)
	}
}

func rewriteAttr(n *html.Node, attrName, sourceDir string, cfg rewriteConfig) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		// Keep query and fragment out of the filesystem path.
		pathPart, suffix := splitURLSuffix(attr.Val)
		if unescaped, err := url.PathUnescape(pathPart); err == nil {
			pathPart = unescaped
		}

		absPath := filepath.Join(sourceDir, pathPart)
		if !cfg.allowParent && !isPathUnderDir(absPath, sourceDir) {
			continue
		}

		n.Attr[i].Val = pathToFileURL(absPath) + suffix
	}
}

// splitURLSuffix splits "a.png?x=1#y" into "a.png" and "?x=1#y".
func splitURLSuffix(ref string) (string, string) {
	if idx := strings.IndexAny(ref, "?#"); idx != -1 {
		return ref[:idx], ref[idx:]
	}
	return ref, ""
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	lower := strings.ToLower(path)
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "mailto:", "javascript:", "//"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	if strings.HasPrefix(path, "#") {
		return false
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
