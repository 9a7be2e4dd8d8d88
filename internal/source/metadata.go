// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-summarizer/internal/httputil"
	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// arxivMeta is the identity metadata of an arXiv paper plus its abstract,
// kept for the abstract-only fallback.
type arxivMeta struct {
	types.KnownMetadata
	Abstract string
}

// fetchArxivMetadata retrieves title, authors, year, and abstract from the
// arXiv API.
func (r *Resolver) fetchArxivMetadata(ctx context.Context, arxivID string) (arxivMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	apiURL := arxivAPIBase + "?id_list=" + url.QueryEscape(arxivID)
	resp, err := r.getAPI(ctx, apiURL, "application/atom+xml")
	if err != nil {
		return arxivMeta{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return arxivMeta{}, &types.StatusError{URL: apiURL, StatusCode: resp.StatusCode}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return arxivMeta{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	// The API answers unknown IDs with a single entry titled "Error".
	if len(feed.Entries) == 0 || strings.EqualFold(strings.TrimSpace(feed.Entries[0].Title), "error") {
		return arxivMeta{}, fmt.Errorf("no entries found for arXiv ID %s", arxivID)
	}

	entry := feed.Entries[0]
	meta := arxivMeta{
		KnownMetadata: types.KnownMetadata{
			Title:      collapse(entry.Title),
			Identifier: "arXiv:" + arxivID,
		},
		Abstract: collapse(entry.Summary),
	}
	for _, a := range entry.Authors {
		if name := collapse(a.Name); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published)); err == nil {
		meta.VenueYear = "arXiv " + strconv.Itoa(t.Year())
	}
	return meta, nil
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// fetchCrossRefMetadata retrieves title, authors, venue, and year for a DOI.
func (r *Resolver) fetchCrossRefMetadata(ctx context.Context, doi string) (types.KnownMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	apiURL := crossrefAPIBase + doi
	resp, err := r.getAPI(ctx, apiURL, "application/json")
	if err != nil {
		return types.KnownMetadata{}, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.KnownMetadata{}, &types.StatusError{URL: apiURL, StatusCode: resp.StatusCode}
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.KnownMetadata{}, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	md := types.KnownMetadata{Identifier: doi}
	if len(cr.Message.Title) > 0 {
		md.Title = collapse(cr.Message.Title[0])
	}
	for _, a := range cr.Message.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			md.Authors = append(md.Authors, name)
		}
	}

	var venue, year string
	if len(cr.Message.ContainerTitle) > 0 {
		venue = cr.Message.ContainerTitle[0]
	}
	if len(cr.Message.Issued.DateParts) > 0 && len(cr.Message.Issued.DateParts[0]) > 0 {
		year = strconv.Itoa(cr.Message.Issued.DateParts[0][0])
	}
	md.VenueYear = strings.TrimSpace(venue + " " + year)
	return md, nil
}

// getAPI issues a metadata GET with 429 back-off.
func (r *Resolver) getAPI(ctx context.Context, apiURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", accept)
	return httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
