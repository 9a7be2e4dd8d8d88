// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source resolves input descriptors into extracted documents:
// PDF page text, HTML converted to text, or passthrough raw text, with
// provenance metadata from the arXiv and CrossRef APIs where available.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Resolver turns an InputDescriptor into an ExtractedDocument. It holds no
// per-request state and is safe for concurrent use.
type Resolver struct {
	cfg    types.SourceConfig
	client *http.Client
	logger *slog.Logger
}

// New returns a Resolver. A nil client uses http.DefaultClient; a nil
// logger uses slog.Default().
func New(cfg types.SourceConfig, client *http.Client, logger *slog.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = types.DefaultFetchTimeout
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = types.DefaultMaxUploadBytes
	}
	return &Resolver{cfg: cfg, client: client, logger: logger}
}

// Resolve extracts text from desc. Failures wrap types.ErrExtraction or
// types.ErrUnreachableSource.
func (r *Resolver) Resolve(ctx context.Context, desc types.InputDescriptor) (types.ExtractedDocument, error) {
	switch d := desc.(type) {
	case types.FileBytes:
		return r.resolveFile(d)
	case types.RemoteURL:
		return r.resolveRemote(ctx, d)
	case types.RawText:
		return resolveText(d)
	default:
		return types.ExtractedDocument{}, fmt.Errorf("%w: unsupported input %T", types.ErrExtraction, desc)
	}
}

func resolveText(d types.RawText) (types.ExtractedDocument, error) {
	if strings.TrimSpace(d.Text) == "" {
		return types.ExtractedDocument{}, fmt.Errorf("%w: empty text", types.ErrExtraction)
	}
	return types.ExtractedDocument{
		RawText:          d.Text,
		SourceKind:       types.SourceText,
		Format:           types.FormatPlain,
		SourceIdentifier: types.InlineIdentifier,
	}, nil
}

func (r *Resolver) resolveFile(d types.FileBytes) (types.ExtractedDocument, error) {
	name := d.Filename
	if name == "" {
		name = "upload"
	}
	if len(d.Data) == 0 {
		return types.ExtractedDocument{}, fmt.Errorf("%w: %s is empty", types.ErrExtraction, name)
	}

	doc := types.ExtractedDocument{
		SourceKind:       types.SourceFile,
		SourceIdentifier: name,
	}
	var err error
	switch format := sniffFormat(d.Data, d.ContentType, d.Filename); format {
	case types.FormatPDF:
		doc, err = r.fromPDF(doc, d.Data)
	case types.FormatHTML:
		doc, err = fromHTML(doc, d.Data, "")
	case types.FormatPlain:
		doc, err = fromPlain(doc, d.Data)
	default:
		err = fmt.Errorf("%w: unsupported file type for %s (content type %q)", types.ErrExtraction, name, d.ContentType)
	}
	return doc, err
}

func (r *Resolver) resolveRemote(ctx context.Context, d types.RemoteURL) (types.ExtractedDocument, error) {
	idType, normalized := Classify(d.URL)
	endpoint := ResolveURL(idType, normalized)
	if endpoint == "" {
		return types.ExtractedDocument{}, fmt.Errorf("%w: not a URL or archive identifier: %q", types.ErrExtraction, d.URL)
	}

	doc := types.ExtractedDocument{
		SourceKind:       types.SourceURL,
		SourceIdentifier: d.URL,
	}

	var meta arxivMeta
	switch idType {
	case TypeArxiv:
		doc.Metadata.Identifier = "arXiv:" + normalized
		if r.cfg.MetadataLookup {
			var err error
			meta, err = r.fetchArxivMetadata(ctx, normalized)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return types.ExtractedDocument{}, err
				}
				r.logger.WarnContext(ctx, "arXiv metadata lookup failed", "id", normalized, "error", err)
			}
			doc.Metadata = doc.Metadata.Overlay(meta.KnownMetadata)
		}
	case TypeDOI:
		doc.Metadata.Identifier = normalized
		if r.cfg.MetadataLookup {
			md, err := r.fetchCrossRefMetadata(ctx, normalized)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return types.ExtractedDocument{}, err
				}
				r.logger.WarnContext(ctx, "CrossRef metadata lookup failed", "doi", normalized, "error", err)
			}
			doc.Metadata = doc.Metadata.Overlay(md)
		}
	}

	r.logger.DebugContext(ctx, "fetching document", "input", d.URL, "type", idType, "endpoint", endpoint)
	page, err := r.fetch(ctx, endpoint)
	if err != nil {
		if idType == TypeArxiv && meta.Abstract != "" && !errors.Is(err, context.Canceled) {
			return abstractFallback(doc, meta, err), nil
		}
		return types.ExtractedDocument{}, err
	}

	fetched := doc
	switch format := sniffFormat(page.body, page.contentType, page.finalURL); format {
	case types.FormatPDF:
		fetched, err = r.fromPDF(fetched, page.body)
	case types.FormatHTML:
		fetched, err = fromHTML(fetched, page.body, page.finalURL)
	case types.FormatPlain:
		fetched, err = fromPlain(fetched, page.body)
	default:
		err = fmt.Errorf("%w: unsupported content type %q from %s", types.ErrExtraction, page.contentType, endpoint)
	}
	if err != nil {
		if idType == TypeArxiv && meta.Abstract != "" && errors.Is(err, types.ErrExtraction) {
			return abstractFallback(doc, meta, err), nil
		}
		return types.ExtractedDocument{}, err
	}
	// API metadata is more reliable than what the document itself declares.
	fetched.Metadata = fetched.Metadata.Overlay(doc.Metadata)
	return fetched, nil
}

// abstractFallback builds a document from arXiv metadata when the full
// text could not be retrieved.
func abstractFallback(doc types.ExtractedDocument, meta arxivMeta, cause error) types.ExtractedDocument {
	doc.Format = types.FormatPlain
	doc.RawText = meta.Title + "\n\n" + meta.Abstract
	doc.Warnings = append(doc.Warnings, fmt.Sprintf("full text unavailable (%v); using arXiv title and abstract", cause))
	return doc
}

// sniffFormat decides how to decode a payload from its leading bytes, its
// declared content type, and its name or URL, in that order.
func sniffFormat(data []byte, contentType, name string) types.ContentFormat {
	if isPDF(data) {
		return types.FormatPDF
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/pdf":
		// Declared PDF without the signature is still decoded as PDF so the
		// failure reports a corrupt file rather than an unsupported type.
		return types.FormatPDF
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return types.FormatHTML
	case strings.HasPrefix(mediaType, "text/"):
		return types.FormatPlain
	}

	switch strings.ToLower(filepath.Ext(stripQuery(name))) {
	case ".pdf":
		return types.FormatPDF
	case ".html", ".htm":
		return types.FormatHTML
	case ".txt", ".md", ".text":
		return types.FormatPlain
	}

	switch sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data)); {
	case sniffed == "text/html":
		return types.FormatHTML
	case sniffed == "text/plain":
		return types.FormatPlain
	}
	return ""
}

func stripQuery(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}
	return s
}

func fromPlain(doc types.ExtractedDocument, data []byte) (types.ExtractedDocument, error) {
	data = trimBOM(data)
	if !utf8.Valid(data) {
		doc.Warnings = append(doc.Warnings, "text is not valid UTF-8; invalid bytes dropped")
	}
	text := strings.ToValidUTF8(string(data), "")
	if strings.TrimSpace(text) == "" {
		return types.ExtractedDocument{}, fmt.Errorf("%w: %s contains no text", types.ErrExtraction, doc.SourceIdentifier)
	}
	doc.Format = types.FormatPlain
	doc.RawText = text
	return doc, nil
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
