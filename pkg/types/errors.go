// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every failure leaving a pipeline stage wraps exactly one of
// these, so callers branch with errors.Is.
var (
	ErrExtraction            = errors.New("extraction failed")
	ErrUnreachableSource     = errors.New("source unreachable")
	ErrInsufficientText      = errors.New("insufficient text")
	ErrSummarization         = errors.New("summarization failed")
	ErrSchemaRepairExhausted = errors.New("schema repair exhausted")
)

// StatusError reports a non-success HTTP status from an upstream service.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Kind returns a short machine-readable name for the error kind wrapped by
// err, or "internal" when err wraps none of them.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrUnreachableSource):
		return "unreachable_source"
	case errors.Is(err, ErrInsufficientText):
		return "insufficient_text"
	case errors.Is(err, ErrSchemaRepairExhausted):
		return "schema_repair_exhausted"
	case errors.Is(err, ErrSummarization):
		return "summarization"
	default:
		return "internal"
	}
}

// IsRetryable reports whether retrying the same request may succeed:
// timeouts, transport failures, 429 and 5xx responses from the source or
// the summarization service. Caller cancellation and 4xx responses are
// not retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if !errors.Is(err, ErrUnreachableSource) && !errors.Is(err, ErrSummarization) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests ||
			se.StatusCode == http.StatusRequestTimeout ||
			se.StatusCode >= 500
	}
	return true
}
