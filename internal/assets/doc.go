// Package assets provides the stylesheets of the HTML preview.
//
// Sheets come from two places:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - sheets compiled into the binary
//	    ├── FilesystemLoader  - {basePath}/{name}.css on disk
//	    └── Resolver          - filesystem first, embedded as fallback
//
// A sheet carries the static rules of the page (paragraph margins, table
// borders, page break marks). The body font and text width depend on the
// document configuration and are written by the previewer itself.
//
// Sheet names are plain identifiers. FilesystemLoader resolves symlinks and
// refuses paths that leave its base directory.
package assets
