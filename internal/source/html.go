// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

var (
	// htmlPolicy keeps readable structure (headings, lists, tables, links)
	// and drops scripts, styles, forms, and embedded media.
	htmlPolicy = bluemonday.UGCPolicy()

	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// fromHTML converts an HTML page to Markdown-flavoured text. pageURL, when
// set, resolves relative links.
func fromHTML(doc types.ExtractedDocument, data []byte, pageURL string) (types.ExtractedDocument, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return types.ExtractedDocument{}, fmt.Errorf("%w: parsing HTML from %s: %w", types.ErrExtraction, doc.SourceIdentifier, err)
	}

	body := data
	if n := findElement(root, atom.Body); n != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err == nil {
			body = buf.Bytes()
		}
	}

	clean := htmlPolicy.Sanitize(string(body))
	var text string
	if pageURL != "" {
		text, err = mdConverter.ConvertString(clean, converter.WithDomain(pageURL))
	} else {
		text, err = mdConverter.ConvertString(clean)
	}
	if err != nil {
		return types.ExtractedDocument{}, fmt.Errorf("%w: converting HTML from %s: %w", types.ErrExtraction, doc.SourceIdentifier, err)
	}
	if strings.TrimSpace(text) == "" {
		return types.ExtractedDocument{}, fmt.Errorf("%w: no text in HTML from %s", types.ErrExtraction, doc.SourceIdentifier)
	}

	doc.Format = types.FormatHTML
	doc.RawText = text
	doc.Metadata = doc.Metadata.Overlay(htmlMetadata(root))
	return doc, nil
}

// htmlMetadata reads the page <title> and the Highwire citation_* meta tags
// that most publishers and preprint servers emit.
func htmlMetadata(root *html.Node) types.KnownMetadata {
	var md types.KnownMetadata
	var venue, date, doi, arxivID, citationTitle string

	walk(root, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Title:
			if md.Title == "" && n.FirstChild != nil {
				md.Title = strings.Join(strings.Fields(n.FirstChild.Data), " ")
			}
		case atom.Meta:
			name, content := strings.ToLower(attr(n, "name")), strings.TrimSpace(attr(n, "content"))
			if content == "" {
				return
			}
			switch name {
			case "citation_title":
				citationTitle = content
			case "citation_author":
				md.Authors = append(md.Authors, content)
			case "citation_publication_date", "citation_date", "citation_online_date":
				if date == "" {
					date = content
				}
			case "citation_journal_title", "citation_conference_title":
				venue = content
			case "citation_doi":
				doi = content
			case "citation_arxiv_id":
				arxivID = content
			}
		}
	})

	if citationTitle != "" {
		md.Title = citationTitle
	}
	year := yearPattern.FindString(date)
	md.VenueYear = strings.TrimSpace(venue + " " + year)
	switch {
	case arxivID != "":
		md.Identifier = "arXiv:" + arxivID
	case doi != "":
		md.Identifier = strings.TrimPrefix(doi, "doi:")
	}
	return md
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
