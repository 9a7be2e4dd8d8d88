// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns canonical paper text into a SummaryRecord through
// one call to a generative AI backend, with parse-then-repair of the reply.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a stub. It
// takes one text prompt and returns one text response.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewBackend constructs the backend named by cfg.Backend.
func NewBackend(cfg types.AIConfig, client *http.Client) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s backend", cfg.Backend)
	}
	switch cfg.Backend {
	case types.BackendClaude:
		return &ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model, MaxTokens: cfg.MaxOutputTokens, Client: client}, nil
	case types.BackendOpenAI:
		var opts []option.RequestOption
		if client != nil {
			opts = append(opts, option.WithHTTPClient(client))
		}
		return NewOpenAIBackend(cfg.APIKey, cfg.Model, cfg.MaxOutputTokens, opts...), nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.Backend)
	}
}

// maxAttempts is the initial call plus one strict retry.
const maxAttempts = 2

// Builder produces SummaryRecords.
type Builder struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
}

// NewBuilder creates a Builder. A nil logger uses slog.Default().
func NewBuilder(backend Backend, cfg types.AIConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultAITimeout
	}
	return &Builder{backend: backend, timeout: timeout, logger: logger}
}

// Result is a built record plus how it was obtained.
type Result struct {
	Record   types.SummaryRecord
	Status   Status
	Warnings []string
	Attempts int
}

// Build summarizes text. known carries identity fields that override
// whatever the model reports for them.
//
// A failed backend call returns ErrSummarization. A reply that is not a JSON
// object triggers exactly one retry with a stricter instruction; a second
// such reply returns ErrSchemaRepairExhausted. No partial record is returned
// on error.
func (b *Builder) Build(ctx context.Context, text types.CanonicalText, known types.KnownMetadata) (Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		prompt, err := renderPrompt(text.Text, attempt > 1)
		if err != nil {
			return Result{}, fmt.Errorf("rendering prompt: %w", err)
		}

		reply, err := b.complete(ctx, prompt)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s backend: %w", types.ErrSummarization, b.backend.Name(), err)
		}

		out := ParseAndRepair(reply)
		if out.Status == StatusFailed {
			lastErr = out.Err
			b.logger.WarnContext(ctx, "unparseable summarization response",
				"backend", b.backend.Name(), "attempt", attempt, "error", out.Err, "response_prefix", truncate(reply, 200))
			continue
		}

		if out.Status == StatusRepaired {
			b.logger.InfoContext(ctx, "summarization response repaired",
				"backend", b.backend.Name(), "repairs", len(out.Warnings))
		}
		return Result{
			Record:   MergeIdentity(out.Record, known),
			Status:   out.Status,
			Warnings: out.Warnings,
			Attempts: attempt,
		}, nil
	}
	return Result{}, fmt.Errorf("%w: after %d attempts: %w", types.ErrSchemaRepairExhausted, maxAttempts, lastErr)
}

func (b *Builder) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.backend.Complete(ctx, prompt)
}

// MergeIdentity overlays the non-empty identity fields of known onto rec.
// Content fields always come from rec.
func MergeIdentity(rec types.SummaryRecord, known types.KnownMetadata) types.SummaryRecord {
	if t := strings.TrimSpace(known.Title); t != "" {
		rec.Title = t
	}
	if len(known.Authors) > 0 {
		rec.Authors = append([]string(nil), known.Authors...)
	}
	if v := strings.TrimSpace(known.VenueYear); v != "" {
		rec.VenueYear = v
	}
	if id := strings.TrimSpace(known.Identifier); id != "" {
		rec.Identifier = id
	}
	return rec.Complete()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
