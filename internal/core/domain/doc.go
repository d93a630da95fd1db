// Package domain holds the types every layer shares: documents and chunks
// on the way into the index, answers and interactions on the way out,
// feedback records, settings, and the error taxonomy that classifies
// failures for users.
//
// Only the standard library is imported here.
package domain
