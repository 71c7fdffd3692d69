// Package pipeline turns markdown tables and HTML slides into documents
// ready for browser rasterization.
//
// Stages:
//   - Markdown preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark (GFM tables)
//   - Page templating for table documents and single-slide decks
//   - CSS injection into HTML documents
//   - Relative path rewriting to file:// URLs
//
// Rasterization itself is handled by the root doctools package using
// headless Chrome (go-rod).
package pipeline
