// Package services implements the driving ports.
//
// A build loads, normalises, chunks and embeds into a fresh index, then
// swaps it into the session in one step. A question is retrieved against
// that index, optionally reranked, assembled into a context block and sent
// to the LLM with the chat prompt.
package services
