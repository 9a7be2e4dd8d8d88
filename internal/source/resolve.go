// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// IdentifierType classifies a RemoteURL input.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeArxiv
	TypeDOI
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	case TypeURL:
		return "url"
	default:
		return "unknown"
	}
}

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase    = "https://arxiv.org/pdf/"
	arxivAPIBase    = "https://export.arxiv.org/api/query"
	doiBase         = "https://doi.org/"
	crossrefAPIBase = "https://api.crossref.org/works/"
)

// arxivIDPattern matches new-style ("2301.07041", "2301.07041v2") and
// old-style ("hep-th/9901001", "math.GT/0309136v1") arXiv IDs.
const arxivIDPattern = `(\d{4}\.\d{4,5}(?:v\d+)?|[a-z][a-z\-]*(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)`

// arxivPattern matches bare or "arXiv:"-prefixed IDs.
var arxivPattern = regexp.MustCompile(`^(?i:arxiv:)?` + arxivIDPattern + `$`)

// arxivPathPattern matches the path of arxiv.org abstract and PDF links.
var arxivPathPattern = regexp.MustCompile(`^/(?:abs|pdf)/` + arxivIDPattern + `(?:\.pdf)?/?$`)

// arxivDOIPattern matches DOIs minted by arXiv: "10.48550/arXiv.2301.07041".
var arxivDOIPattern = regexp.MustCompile(`^10\.48550/(?i:arxiv)\.` + arxivIDPattern + `$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

var arxivHosts = map[string]bool{
	"arxiv.org":        true,
	"www.arxiv.org":    true,
	"export.arxiv.org": true,
}

var doiHosts = map[string]bool{
	"doi.org":    true,
	"dx.doi.org": true,
}

// Classify determines the identifier type and returns the normalized form:
// the bare arXiv ID, the bare DOI, or the URL unchanged.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}

	doi := strings.TrimPrefix(strings.TrimPrefix(identifier, "doi:"), "DOI:")
	if t, norm, ok := classifyDOI(doi); ok {
		return t, norm
	}

	u, err := url.Parse(identifier)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return TypeUnknown, identifier
	}

	host := strings.ToLower(u.Hostname())
	if arxivHosts[host] {
		if m := arxivPathPattern.FindStringSubmatch(path.Clean(u.Path)); m != nil {
			return TypeArxiv, m[1]
		}
	}
	if doiHosts[host] {
		if t, norm, ok := classifyDOI(strings.TrimPrefix(u.Path, "/")); ok {
			return t, norm
		}
	}
	return TypeURL, identifier
}

func classifyDOI(s string) (IdentifierType, string, bool) {
	if m := arxivDOIPattern.FindStringSubmatch(s); m != nil {
		return TypeArxiv, m[1], true
	}
	if doiPattern.MatchString(s) {
		return TypeDOI, s, true
	}
	return TypeUnknown, "", false
}

// ResolveURL returns the retrieval endpoint for the identifier. For arXiv,
// this is the arxiv.org PDF endpoint. For DOI, this is the doi.org resolver
// (the HTTP client follows redirects). For direct URLs, it returns as-is.
func ResolveURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeArxiv:
		return arxivPDFBase + normalized
	case TypeDOI:
		return doiBase + normalized
	case TypeURL:
		return normalized
	default:
		return ""
	}
}
