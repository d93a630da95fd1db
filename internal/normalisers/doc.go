// Package normalisers turns loaded bytes into plain text, one normaliser per
// MIME type. MIMEForPath picks the type of a local file from its extension;
// the Registry dispatches on that type.
package normalisers
