// Package doctools implements document-authoring tools for agent runtimes:
// file download, markdown table rasterization, slide inspection, and
// manuscript page inspection.
//
// # Quick Start
//
// Build a Toolkit from defaults and call a tool:
//
//	kit := doctools.NewToolkit()
//	defer kit.Close()
//
//	msg := kit.DownloadFile(ctx, "https://example.com/chart.png", "assets/chart.png")
//	fmt.Println(msg) // File downloaded to assets/chart.png (resolution: 800x600)
//
// Toolkit methods never return errors: every failure is rendered as a
// message for the calling agent. The components behind them (Fetcher,
// TableRenderer, SlideInspector, ManuscriptInspector) return wrapped
// sentinel errors for library use.
//
// # Registration
//
// Tools describes the four tools with their parameters. Register hands
// them to any host implementing Registrar; internal/server adapts them to
// an MCP server.
//
// # Browser Requirements
//
// Table rasterization and slide inspection require Chrome/Chromium. The
// go-rod library downloads a managed Chromium on first run
// (~/.cache/rod/browser/). Browsers are pooled; see RasterizerPool.
//
// For containers and CI environments, set DOCTOOLS_NO_SANDBOX=1 (or
// ROD_NO_SANDBOX=1) to disable the Chrome sandbox, and DOCTOOLS_BROWSER_BIN
// (or ROD_BROWSER_BIN) to use a custom Chrome binary.
package doctools
