// Package session holds the per-session state shared by every operation:
// the current knowledge index and the chat history.
//
// A Session is created when a user session starts, its index is populated
// by a build, read by queries, replaced wholesale by rebuilds and dropped
// when the session ends. Readers never observe a half-built index.
package session
