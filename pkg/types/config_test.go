// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Source.FetchTimeout)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 100, cfg.Normalize.MinTextLength)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, BackendClaude, cfg.AI.Backend)
	assert.False(t, cfg.Cache.Enabled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.AI.Backend = "gemini" }},
		{"negative min length", func(c *Config) { c.Normalize.MinTextLength = -1 }},
		{"zero fetch timeout", func(c *Config) { c.Source.FetchTimeout = 0 }},
		{"zero ai timeout", func(c *Config) { c.AI.Timeout = 0 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"cache without path", func(c *Config) { c.Cache.Enabled = true; c.Cache.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigYAML(t *testing.T) {
	src := `
ai:
  backend: openai
  model: gpt-4o
normalize:
  min_text_length: 50
source:
  user_agent: test-agent
`
	cfg := DefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, BackendOpenAI, cfg.AI.Backend)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 50, cfg.Normalize.MinTextLength)
	assert.Equal(t, "test-agent", cfg.Source.UserAgent)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout, "unset keys keep defaults")
}
