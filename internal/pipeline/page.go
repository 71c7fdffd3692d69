package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
)

// ErrPageRender indicates a page template could not be parsed or executed.
var ErrPageRender = errors.New("page template rendering failed")

// TablePage holds the fields of the table page template.
type TablePage struct {
	Title string
	Body  template.HTML
}

// DeckPage holds the fields of the single-slide deck template.
type DeckPage struct {
	Title  string
	Width  int
	Height int
	Head   template.HTML
	Body   template.HTML
}

// RenderPage executes an HTML page template against data.
func RenderPage(name, tmplContent string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrPageRender, name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPageRender, name, err)
	}
	return buf.String(), nil
}

// BuildTablePage wraps a table fragment into a complete HTML document.
func BuildTablePage(tmplContent, fragment string) (string, error) {
	return RenderPage("table", tmplContent, TablePage{
		Title: "Table",
		Body:  template.HTML(fragment), // #nosec G203 -- goldmark output without raw HTML
	})
}

// BuildSlideDeck turns a slide document into a one-slide deck sized
// width x height, with relative asset URLs resolved against sourceDir.
// The slide's <head> children (styles, links) are carried into the deck
// head, its <title> becomes the deck title, and its body becomes the slide.
func BuildSlideDeck(tmplContent, slideHTML, sourceDir string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: invalid slide size %dx%d", ErrPageRender, width, height)
	}

	rewritten, err := RewriteRelativePaths(slideHTML, sourceDir, AllowParentRefs())
	if err != nil {
		return "", fmt.Errorf("%w: rewriting paths: %v", ErrPageRender, err)
	}

	doc, err := html.Parse(strings.NewReader(rewritten))
	if err != nil {
		return "", fmt.Errorf("%w: parsing slide: %v", ErrPageRender, err)
	}

	head := findElement(doc, "head")
	body := findElement(doc, "body")

	title := "Slide"
	var headHTML strings.Builder
	if head != nil {
		for c := head.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.Data {
				case "title":
					if t := strings.TrimSpace(textContent(c)); t != "" {
						title = t
					}
					continue
				case "meta":
					if hasAttr(c, "charset") {
						continue
					}
				}
			}
			if err := html.Render(&headHTML, c); err != nil {
				return "", fmt.Errorf("%w: %v", ErrPageRender, err)
			}
		}
	}

	var bodyHTML strings.Builder
	if body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&bodyHTML, c); err != nil {
				return "", fmt.Errorf("%w: %v", ErrPageRender, err)
			}
		}
	}

	return RenderPage("deck", tmplContent, DeckPage{
		Title:  title,
		Width:  width,
		Height: height,
		Head:   template.HTML(headHTML.String()), // #nosec G203 -- slide authored locally
		Body:   template.HTML(bodyHTML.String()), // #nosec G203 -- slide authored locally
	})
}

// findElement returns the first element named tag in depth-first order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
