// Package postprocessors builds the chunking strategy named in configuration.
//
// Strategies register a builder under a name; the application asks the
// registry for the configured name ("recursive" by default).
package postprocessors
