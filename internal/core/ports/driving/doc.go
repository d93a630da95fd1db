// Package driving holds the use cases the front ends call: building a
// knowledge base, answering, planning housing, rating answers and editing
// settings. The CLI, TUI, REST and MCP adapters all talk to the same
// implementations in internal/core/services.
package driving
