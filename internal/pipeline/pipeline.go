// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one summarization request end to end: resolve the
// input, normalize its text, build the summary record, and render both
// output views. Stages run sequentially and the first failure ends the
// request.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/paper-summarizer/internal/cache"
	"github.com/pdiddy/paper-summarizer/internal/normalize"
	"github.com/pdiddy/paper-summarizer/internal/render"
	"github.com/pdiddy/paper-summarizer/internal/source"
	"github.com/pdiddy/paper-summarizer/internal/summarize"
	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Resolver turns an input descriptor into extracted text.
type Resolver interface {
	Resolve(ctx context.Context, desc types.InputDescriptor) (types.ExtractedDocument, error)
}

// Summarizer builds a record from canonical text.
type Summarizer interface {
	Build(ctx context.Context, text types.CanonicalText, known types.KnownMetadata) (summarize.Result, error)
}

// Result is the outcome of one successful run.
type Result struct {
	Output types.RenderedOutput

	// Warnings are extraction warnings followed by response repairs.
	Warnings []string

	// Source is the resolved source identifier (filename, URL, "inline").
	Source string

	// Metadata is the identity metadata merged into the record.
	Metadata types.KnownMetadata

	// Cached is true when the record came from the cache.
	Cached bool
}

// Pipeline wires the stages together. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	resolver   Resolver
	summarizer Summarizer
	records    *cache.Store
	cfg        types.Config
	logger     *slog.Logger
}

// New creates a Pipeline from its stages. store may be nil to disable
// caching. A nil logger uses slog.Default().
func New(cfg types.Config, resolver Resolver, summarizer Summarizer, store *cache.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		resolver:   resolver,
		summarizer: summarizer,
		records:    store,
		cfg:        cfg,
		logger:     logger,
	}
}

// FromConfig builds the production pipeline: an HTTP resolver, the
// configured AI backend, and the cache when cfg.Cache.Enabled. The returned
// close function releases the cache and is never nil.
func FromConfig(cfg types.Config, logger *slog.Logger) (*Pipeline, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	if err := cfg.Validate(); err != nil {
		return nil, noop, fmt.Errorf("invalid configuration: %w", err)
	}

	client := &http.Client{}
	backend, err := summarize.NewBackend(cfg.AI, client)
	if err != nil {
		return nil, noop, err
	}

	var store *cache.Store
	closeFn := noop
	if cfg.Cache.Enabled {
		store, err = cache.Open(cfg.Cache)
		if err != nil {
			return nil, noop, fmt.Errorf("opening cache: %w", err)
		}
		closeFn = store.Close
	}

	p := New(cfg,
		source.New(cfg.Source, client, logger),
		summarize.NewBuilder(backend, cfg.AI, logger),
		store,
		logger,
	)
	return p, closeFn, nil
}

// Run processes one input. known holds caller-supplied identity fields;
// they take precedence over metadata discovered while resolving, which in
// turn takes precedence over what the model reports. On error no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, desc types.InputDescriptor, known types.KnownMetadata) (Result, error) {
	start := time.Now()

	doc, err := p.resolver.Resolve(ctx, desc)
	if err != nil {
		return Result{}, err
	}
	p.logger.DebugContext(ctx, "source resolved",
		"source", doc.SourceIdentifier, "kind", doc.SourceKind, "format", doc.Format,
		"raw_chars", len(doc.RawText), "warnings", len(doc.Warnings))

	text, err := normalize.Normalize(doc, p.cfg.Normalize)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	meta := doc.Metadata.Overlay(known)
	key := cache.Key(text.Text, p.cfg.AI.Model, meta)

	if rec, warnings, ok := p.lookup(ctx, key); ok {
		out, err := render.Render(rec)
		if err != nil {
			return Result{}, err
		}
		p.logger.InfoContext(ctx, "summary served from cache", "source", doc.SourceIdentifier, "key", key[:12])
		return Result{
			Output:   out,
			Warnings: warnings,
			Source:   doc.SourceIdentifier,
			Metadata: meta,
			Cached:   true,
		}, nil
	}

	built, err := p.summarizer.Build(ctx, text, meta)
	if err != nil {
		return Result{}, err
	}

	out, err := render.Render(built.Record)
	if err != nil {
		return Result{}, err
	}

	warnings := make([]string, 0, len(doc.Warnings)+len(built.Warnings))
	warnings = append(warnings, doc.Warnings...)
	for _, w := range built.Warnings {
		warnings = append(warnings, "repair: "+w)
	}

	p.save(ctx, cache.Entry{
		Key:      key,
		Model:    p.cfg.AI.Model,
		Source:   doc.SourceIdentifier,
		Record:   out.Record,
		Warnings: warnings,
	})

	p.logger.InfoContext(ctx, "paper summarized",
		"source", doc.SourceIdentifier,
		"chars", text.Length,
		"status", built.Status.String(),
		"attempts", built.Attempts,
		"warnings", len(warnings),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return Result{
		Output:   out,
		Warnings: warnings,
		Source:   doc.SourceIdentifier,
		Metadata: meta,
	}, nil
}

// lookup reads key from the cache. Cache failures are logged and treated as misses.
func (p *Pipeline) lookup(ctx context.Context, key string) (types.SummaryRecord, []string, bool) {
	if p.records == nil {
		return types.SummaryRecord{}, nil, false
	}
	e, ok, err := p.records.Get(ctx, key)
	if err != nil {
		p.logger.WarnContext(ctx, "cache read failed", "error", err)
		return types.SummaryRecord{}, nil, false
	}
	return e.Record, e.Warnings, ok
}

func (p *Pipeline) save(ctx context.Context, e cache.Entry) {
	if p.records == nil {
		return
	}
	if err := p.records.Put(ctx, e); err != nil {
		p.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}
