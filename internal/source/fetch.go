// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// fetched is a successfully retrieved remote body.
type fetched struct {
	body        []byte
	contentType string

	// finalURL is the URL after redirects.
	finalURL string
}

// acceptDocuments is sent with document fetches; PDF is preferred.
const acceptDocuments = "application/pdf, text/html;q=0.9, text/plain;q=0.8, */*;q=0.5"

// fetch retrieves url within the configured fetch timeout. It sets the
// User-Agent and follows redirects. Network failures, timeouts, and
// non-2xx statuses wrap types.ErrUnreachableSource; a body larger than
// MaxDocumentBytes wraps types.ErrExtraction.
func (r *Resolver) fetch(ctx context.Context, url string) (fetched, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetched{}, fmt.Errorf("%w: creating request for %s: %w", types.ErrUnreachableSource, url, err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", acceptDocuments)

	resp, err := r.client.Do(req)
	if err != nil {
		return fetched{}, fmt.Errorf("%w: %w", types.ErrUnreachableSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fetched{}, fmt.Errorf("%w: %w", types.ErrUnreachableSource,
			&types.StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	limit := r.cfg.MaxDocumentBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return fetched{}, fmt.Errorf("%w: reading %s: %w", types.ErrUnreachableSource, url, err)
	}
	if int64(len(body)) > limit {
		return fetched{}, fmt.Errorf("%w: %s exceeds %d bytes", types.ErrExtraction, url, limit)
	}

	return fetched{
		body:        body,
		contentType: resp.Header.Get("Content-Type"),
		finalURL:    resp.Request.URL.String(),
	}, nil
}
