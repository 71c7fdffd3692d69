package pipeline

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-doctools/internal/assets"
)

// ---------------------------------------------------------------------------
// TestTablePreprocessor - Markdown normalization
// ---------------------------------------------------------------------------

func TestTablePreprocessor(t *testing.T) {
	t.Parallel()

	p := &TablePreprocessor{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf normalized", in: "| a |\r\n|---|\r\n| 1 |", want: "| a |\n|---|\n| 1 |"},
		{name: "surrounding blank lines trimmed", in: "\n\n| a |\n\n", want: "| a |"},
		{name: "highlight converted", in: "| ==hot== |", want: "| " + MarkStartPlaceholder + "hot" + MarkEndPlaceholder + " |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.in); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter - Markdown to HTML fragments
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_Table(t *testing.T) {
	t.Parallel()

	md := "| Name | Score |\n|------|------:|\n| Ada | " + MarkStartPlaceholder + "10" + MarkEndPlaceholder + " |"
	got, err := NewGoldmarkConverter().ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	for _, want := range []string{"<table>", "<th>Name</th>", "<mark>10</mark>"} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML() missing %q in %q", want, got)
		}
	}
}

func TestGoldmarkConverter_RawHTMLDropped(t *testing.T) {
	t.Parallel()

	got, err := NewGoldmarkConverter().ToHTML(context.Background(), "<script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML leaked: %q", got)
	}
}

func TestGoldmarkConverter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter().ToHTML(ctx, "| a |"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestCSSInjection - Style block placement
// ---------------------------------------------------------------------------

func TestCSSInjection_InjectCSS(t *testing.T) {
	t.Parallel()

	inj := &CSSInjection{}
	ctx := context.Background()

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{name: "before head close", html: "<html><head></head><body></body></html>", css: "a{}", want: "<html><head><style>a{}</style></head><body></body></html>"},
		{name: "after body open", html: `<body class="x"><p>t</p></body>`, css: "a{}", want: `<body class="x"><style>a{}</style><p>t</p></body>`},
		{name: "prepend", html: "<p>t</p>", css: "a{}", want: "<style>a{}</style><p>t</p>"},
		{name: "empty css unchanged", html: "<p>t</p>", css: "  ", want: "<p>t</p>"},
		{name: "style close escaped", html: "<p>t</p>", css: "</style><script>", want: `<style><\/style><script></style><p>t</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := inj.InjectCSS(ctx, tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSSInjection_LaterBlockComesLast(t *testing.T) {
	t.Parallel()

	inj := &CSSInjection{}
	ctx := context.Background()
	doc := "<html><head></head><body></body></html>"

	doc = inj.InjectCSS(ctx, doc, "base{}")
	doc = inj.InjectCSS(ctx, doc, "user{}")

	if strings.Index(doc, "base{}") > strings.Index(doc, "user{}") {
		t.Errorf("user CSS must follow base CSS: %q", doc)
	}
}

// ---------------------------------------------------------------------------
// TestBuildTablePage / TestBuildSlideDeck - Page templates
// ---------------------------------------------------------------------------

func loadTemplate(t *testing.T, name string) string {
	t.Helper()
	tpl, err := assets.NewEmbeddedLoader().LoadTemplate(name)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) error = %v", name, err)
	}
	return tpl
}

func TestBuildTablePage(t *testing.T) {
	t.Parallel()

	got, err := BuildTablePage(loadTemplate(t, assets.TableTemplate), "<table><tr><td>1</td></tr></table>")
	if err != nil {
		t.Fatalf("BuildTablePage() error = %v", err)
	}
	if !strings.Contains(got, "<table><tr><td>1</td></tr></table>") {
		t.Errorf("fragment escaped or missing: %q", got)
	}
	if !strings.Contains(got, "</head>") {
		t.Errorf("page has no head for CSS injection: %q", got)
	}
}

func TestBuildSlideDeck(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix path layout")
	}

	slide := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Intro</title>` +
		`<style>h1{color:red}</style></head><body><h1>Hello</h1><img src="img/a.png"></body></html>`

	got, err := BuildSlideDeck(loadTemplate(t, assets.DeckTemplate), slide, "/decks", 1280, 720)
	if err != nil {
		t.Fatalf("BuildSlideDeck() error = %v", err)
	}

	for _, want := range []string{
		"<title>Intro</title>",
		"size: 1280px 720px",
		"<style>h1{color:red}</style>",
		`<h1>Hello</h1>`,
		`src="file:///decks/img/a.png"`,
		`data-slide="1"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("deck missing %q:\n%s", want, got)
		}
	}
}

func TestBuildSlideDeck_Fragment(t *testing.T) {
	t.Parallel()

	got, err := BuildSlideDeck(loadTemplate(t, assets.DeckTemplate), "<h1>Bare</h1>", t.TempDir(), 960, 720)
	if err != nil {
		t.Fatalf("BuildSlideDeck() error = %v", err)
	}
	if !strings.Contains(got, "<h1>Bare</h1>") || !strings.Contains(got, "<title>Slide</title>") {
		t.Errorf("fragment slide not wrapped: %s", got)
	}
}

func TestBuildSlideDeck_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := BuildSlideDeck(loadTemplate(t, assets.DeckTemplate), "<p>x</p>", "", 0, 720)
	if !errors.Is(err, ErrPageRender) {
		t.Errorf("BuildSlideDeck() error = %v, want ErrPageRender", err)
	}
}
