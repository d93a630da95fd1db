package domain

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SourceKind identifies where a document came from.
type SourceKind string

// Available source kinds.
const (
	// SourceKindFile is a local file named by the user.
	SourceKindFile SourceKind = "file"

	// SourceKindUpload is a file uploaded through an interface (HTTP, TUI).
	SourceKindUpload SourceKind = "upload"

	// SourceKindURL is a web page fetched over HTTP.
	SourceKindURL SourceKind = "url"

	// SourceKindDefault is one of the bundled default knowledge files.
	SourceKindDefault SourceKind = "default"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindFile, SourceKindUpload, SourceKindURL, SourceKindDefault:
		return true
	default:
		return false
	}
}

// Label returns the human-readable kind shown in source listings.
func (k SourceKind) Label() string {
	switch k {
	case SourceKindURL:
		return "Web page"
	case SourceKindFile, SourceKindDefault, SourceKindUpload:
		return "File"
	default:
		return "Unknown"
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Origin identifies the source a document or chunk belongs to.
type Origin struct {
	// Kind is the type of source.
	Kind SourceKind

	// Identifier is the file path, upload name or URL.
	Identifier string
}

// String returns "kind:identifier".
func (o Origin) String() string {
	return string(o.Kind) + ":" + o.Identifier
}

// SourceRef is a request to load one source.
type SourceRef struct {
	// Kind selects the loader.
	Kind SourceKind

	// Location is the file path or URL. For uploads it is the file name.
	Location string

	// Content holds the bytes of an uploaded file.
	Content []byte
}

// Origin returns the origin this reference will produce.
func (r SourceRef) Origin() Origin {
	return Origin{Kind: r.Kind, Identifier: r.Location}
}

// UploadRefs converts uploads into source references named by their base
// file name. Uploads that repeat both name and content keep the same name
// so a build drops them as duplicates. A different file with a name already
// taken becomes "name (2).ext", "name (3).ext" and so on.
func UploadRefs(uploads []Upload) []SourceRef {
	refs := make([]SourceRef, 0, len(uploads))
	taken := make(map[string][sha256.Size]byte, len(uploads))
	for _, u := range uploads {
		ref := SourceRef{Kind: SourceKindUpload, Content: u.Content}
		if u.Name != "" {
			base := filepath.Base(u.Name)
			sum := sha256.Sum256(u.Content)
			ref.Location = base
			for n := 2; ; n++ {
				prev, ok := taken[ref.Location]
				if !ok || prev == sum {
					break
				}
				ext := filepath.Ext(base)
				ref.Location = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(base, ext), n, ext)
			}
			taken[ref.Location] = sum
		}
		refs = append(refs, ref)
	}
	return refs
}

// RawDocument represents opaque bytes fetched by a source loader.
// It is the loader's output before normalisation.
type RawDocument struct {
	// Origin is the source that produced this document.
	Origin Origin

	// URI is the concrete location read (file path or final URL).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]string
}

// SourceDocument is one validated unit of text extracted from a source.
// Construct it with NewSourceDocument; the zero value is not valid.
type SourceDocument struct {
	// Text is the extracted text, trimmed of surrounding whitespace.
	Text string

	// Origin is the source this text came from.
	Origin Origin

	// Title is an optional display title (page title, file name).
	Title string

	// CharCount is the number of runes in Text.
	CharCount int

	// Metadata carries attribution fields such as "url", "file_path" and "page".
	Metadata map[string]string
}

// NewSourceDocument validates and builds a SourceDocument.
// Blank text yields an EMPTY LoadError; an empty identifier is invalid input.
func NewSourceDocument(text string, origin Origin, title string, metadata map[string]string) (SourceDocument, error) {
	if origin.Identifier == "" {
		return SourceDocument{}, fmt.Errorf("%w: source document needs an origin identifier", ErrInvalidInput)
	}
	if !origin.Kind.IsValid() {
		return SourceDocument{}, fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, origin.Kind)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SourceDocument{}, NewLoadError(origin, ErrEmpty, nil)
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	return SourceDocument{
		Text:      text,
		Origin:    origin,
		Title:     title,
		CharCount: utf8.RuneCountInString(text),
		Metadata:  meta,
	}, nil
}

// SourceStat summarises one ingested source for display and attribution.
type SourceStat struct {
	// Identifier is the origin identifier.
	Identifier string `json:"identifier"`

	// Kind is the source kind.
	Kind SourceKind `json:"kind"`

	// KindLabel is the human-readable kind ("File", "Web page").
	KindLabel string `json:"kind_label"`

	// CharCount is the total characters across the source's documents.
	CharCount int `json:"char_count"`

	// Documents is how many documents the source produced (pages for PDFs).
	Documents int `json:"documents"`

	// Chunks is how many chunks were indexed for the source.
	Chunks int `json:"chunks"`
}

// NewDocument builds a SourceDocument from this raw document's origin and
// metadata, adding the extra metadata given.
func (r RawDocument) NewDocument(text, title string, extra map[string]string) (SourceDocument, error) {
	meta := make(map[string]string, len(r.Metadata)+len(extra))
	for k, v := range r.Metadata {
		meta[k] = v
	}
	for k, v := range extra {
		meta[k] = v
	}
	return NewSourceDocument(text, r.Origin, title, meta)
}
