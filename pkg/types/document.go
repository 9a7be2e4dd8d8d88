// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// SourceKind names the input variant a document was resolved from.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
	SourceText SourceKind = "text"
)

// ContentFormat is the decoded format of the payload the text came from.
type ContentFormat string

const (
	FormatPDF   ContentFormat = "pdf"
	FormatHTML  ContentFormat = "html"
	FormatPlain ContentFormat = "plain"
)

// InputDescriptor is the closed set of inputs accepted by the pipeline:
// FileBytes, RemoteURL, and RawText. The unexported marker keeps other
// packages from adding variants, so resolvers can switch exhaustively.
type InputDescriptor interface {
	Kind() SourceKind
	isInputDescriptor()
}

// FileBytes is an uploaded file held in memory.
type FileBytes struct {
	Data []byte

	// Filename is the client-supplied name, used as the source identifier
	// and as an extension hint when ContentType is empty.
	Filename string

	// ContentType is the declared MIME type (e.g. "application/pdf").
	ContentType string
}

// RemoteURL is a URL or bare archive identifier ("2301.07041", "arXiv:2301.07041",
// "10.1145/1234567.1234568") to fetch.
type RemoteURL struct {
	URL string
}

// RawText is caller-supplied text; it is both payload and extracted text.
type RawText struct {
	Text string
}

func (FileBytes) Kind() SourceKind { return SourceFile }
func (RemoteURL) Kind() SourceKind { return SourceURL }
func (RawText) Kind() SourceKind   { return SourceText }

func (FileBytes) isInputDescriptor() {}
func (RemoteURL) isInputDescriptor() {}
func (RawText) isInputDescriptor()   {}

// InlineIdentifier is the source identifier recorded for RawText input.
const InlineIdentifier = "inline"

// KnownMetadata carries identity fields known before summarization, either
// supplied by the caller or discovered by the resolver (arXiv API, HTML
// <title>, PDF document info).
type KnownMetadata struct {
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	VenueYear  string   `json:"venueYear,omitempty" yaml:"venue_year,omitempty"`
	Identifier string   `json:"identifier,omitempty" yaml:"identifier,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m KnownMetadata) IsEmpty() bool {
	return strings.TrimSpace(m.Title) == "" &&
		len(nonEmpty(m.Authors)) == 0 &&
		strings.TrimSpace(m.VenueYear) == "" &&
		strings.TrimSpace(m.Identifier) == ""
}

// Overlay returns m with every non-empty field of top replacing the
// corresponding field of m.
func (m KnownMetadata) Overlay(top KnownMetadata) KnownMetadata {
	out := m
	if s := strings.TrimSpace(top.Title); s != "" {
		out.Title = s
	}
	if a := nonEmpty(top.Authors); len(a) > 0 {
		out.Authors = a
	}
	if s := strings.TrimSpace(top.VenueYear); s != "" {
		out.VenueYear = s
	}
	if s := strings.TrimSpace(top.Identifier); s != "" {
		out.Identifier = s
	}
	return out
}

// ParseAuthors splits a comma- or semicolon-separated author list.
func ParseAuthors(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	return nonEmpty(fields)
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractedDocument is the resolver's output: raw text plus provenance.
// RawText is never empty; resolvers fail instead of producing one.
type ExtractedDocument struct {
	RawText          string        `json:"rawText" yaml:"raw_text"`
	SourceKind       SourceKind    `json:"sourceKind" yaml:"source_kind"`
	Format           ContentFormat `json:"format" yaml:"format"`
	SourceIdentifier string        `json:"sourceIdentifier" yaml:"source_identifier"`

	// Warnings lists non-fatal extraction problems in the order they
	// occurred, e.g. image-only pages.
	Warnings []string `json:"extractionWarnings" yaml:"extraction_warnings"`

	// Metadata holds identity fields discovered while resolving.
	Metadata KnownMetadata `json:"metadata" yaml:"metadata"`
}

// CanonicalText is normalized document text ready for summarization.
// Length counts runes.
type CanonicalText struct {
	Text   string `json:"text" yaml:"text"`
	Length int    `json:"length" yaml:"length"`
}
