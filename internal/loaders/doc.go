// Package loaders turns source references into raw documents.
//
// Each sub-package implements driven.SourceLoader for one family of
// source kinds:
//
//   - filesystem: local files named by the user and the bundled defaults
//   - upload: in-memory files submitted through the HTTP API or TUI
//   - web: pages fetched over HTTP or rendered in headless Chrome
//
// Loaders only read bytes. Text extraction is done by the normaliser
// registry, selected by the MIME type the loader reports.
package loaders
