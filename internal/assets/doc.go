// Package assets provides the CSS styles and HTML page templates used to
// rasterize tables and slides.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the table renderer and slide inspector.
// It tries the custom FilesystemLoader first, falling back to EmbeddedLoader
// if the asset is not found.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css     # table styles (e.g., compact.css)
//	└── templates/
//	    └── {name}.html    # page templates (table.html, deck.html)
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
