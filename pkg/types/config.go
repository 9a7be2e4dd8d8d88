// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// UserAgent is the User-Agent header sent with outbound requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds 429 back-off retries for metadata lookups (default 2).
	// Document fetches are never retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SourceConfig holds settings for resolving input descriptors.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// FetchTimeout bounds each remote fetch (default 30s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout" mapstructure:"fetch_timeout"`

	// MaxDocumentBytes caps how much of a remote body is read (default 16 MiB).
	MaxDocumentBytes int64 `json:"max_document_bytes" yaml:"max_document_bytes" mapstructure:"max_document_bytes"`

	// MetadataLookup enables arXiv and CrossRef API lookups for identity
	// fields of archive identifiers.
	MetadataLookup bool `json:"metadata_lookup" yaml:"metadata_lookup" mapstructure:"metadata_lookup"`
}

// NormalizeConfig holds settings for text normalization.
type NormalizeConfig struct {
	// MinTextLength is the minimum canonical length in characters (default 100).
	MinTextLength int `json:"min_text_length" yaml:"min_text_length" mapstructure:"min_text_length"`
}

// AIBackendName identifies the summarization service.
type AIBackendName string

const (
	BackendClaude AIBackendName = "claude"
	BackendOpenAI AIBackendName = "openai"
)

// AIConfig holds settings for the summarization call.
type AIConfig struct {
	// Backend selects the service: claude or openai.
	Backend AIBackendName `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds each summarization call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxOutputTokens caps the response length (default 4096).
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens" mapstructure:"max_output_tokens"`
}

// CacheConfig controls the optional record cache.
type CacheConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes caps request bodies (default 16 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// RequestTimeout bounds a whole request, fetch and summarization included.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// Config groups all component configurations. It is built once at startup
// and passed by value into each component's constructor.
type Config struct {
	Source    SourceConfig    `json:"source" yaml:"source" mapstructure:"source"`
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	AI        AIConfig        `json:"ai" yaml:"ai" mapstructure:"ai"`
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
}

const (
	DefaultMinTextLength        = 100
	DefaultMaxUploadBytes int64 = 16 << 20
	DefaultFetchTimeout         = 30 * time.Second
	DefaultAITimeout            = 60 * time.Second
	DefaultUserAgent            = "paper-summarizer/0.1 (+https://github.com/pdiddy/paper-summarizer)"
	DefaultClaudeModel          = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel          = "gpt-4o"
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			HTTPConfig: HTTPConfig{
				UserAgent:  DefaultUserAgent,
				MaxRetries: 2,
			},
			FetchTimeout:     DefaultFetchTimeout,
			MaxDocumentBytes: DefaultMaxUploadBytes,
			MetadataLookup:   true,
		},
		Normalize: NormalizeConfig{MinTextLength: DefaultMinTextLength},
		AI: AIConfig{
			Backend:         BackendClaude,
			Model:           DefaultClaudeModel,
			Timeout:         DefaultAITimeout,
			MaxOutputTokens: 4096,
		},
		Cache: CacheConfig{Path: "paper-summarizer.db"},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: DefaultMaxUploadBytes,
			RequestTimeout: 2 * time.Minute,
		},
	}
}

// Validate rejects configurations no component can run with.
func (c Config) Validate() error {
	switch c.AI.Backend {
	case BackendClaude, BackendOpenAI:
	default:
		return fmt.Errorf("unknown AI backend %q (want claude or openai)", c.AI.Backend)
	}
	if c.Normalize.MinTextLength < 0 {
		return fmt.Errorf("min_text_length must be >= 0, got %d", c.Normalize.MinTextLength)
	}
	if c.Source.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", c.Source.FetchTimeout)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai timeout must be positive, got %v", c.AI.Timeout)
	}
	if c.Source.MaxDocumentBytes <= 0 || c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("size limits must be positive")
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache enabled without a path")
	}
	return nil
}
