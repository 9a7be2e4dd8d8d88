// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// envKeys are the config keys readable from PAPER_SUMMARIZER_* variables,
// e.g. PAPER_SUMMARIZER_AI_BACKEND.
var envKeys = []string{
	"ai.backend",
	"ai.model",
	"ai.api_key",
	"ai.timeout",
	"ai.max_output_tokens",
	"source.fetch_timeout",
	"source.metadata_lookup",
	"normalize.min_text_length",
	"cache.enabled",
	"cache.path",
	"server.addr",
	"server.max_upload_bytes",
	"server.request_timeout",
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-summarizer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-summarizer"))
		}
	}

	viper.SetEnvPrefix("PAPER_SUMMARIZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, k := range envKeys {
		_ = viper.BindEnv(k)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults,
// then applies the command's AI flags and resolves the API key.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		b, _ := flags.GetString("backend")
		cfg.AI.Backend = types.AIBackendName(strings.ToLower(b))
	}
	if flags.Changed("model") {
		cfg.AI.Model, _ = flags.GetString("model")
	} else if cfg.AI.Backend == types.BackendOpenAI && cfg.AI.Model == types.DefaultClaudeModel {
		cfg.AI.Model = types.DefaultOpenAIModel
	}
	if flags.Changed("api-key") {
		cfg.AI.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if flags.Changed("cache-path") {
		cfg.Cache.Path, _ = flags.GetString("cache-path")
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = apiKeyFallback(cfg.AI.Backend)
	}
	return cfg, cfg.Validate()
}

// apiKeyFallback reads the key from .secrets/ or the provider's standard
// environment variable.
func apiKeyFallback(backend types.AIBackendName) string {
	if k := loadedSecrets.APIKey(backend); k != "" {
		return k
	}
	switch backend {
	case types.BackendClaude:
		return os.Getenv("ANTHROPIC_API_KEY")
	case types.BackendOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// addAIFlags registers the flags read by loadConfig.
func addAIFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "AI backend: claude or openai (default claude)")
	cmd.Flags().String("model", "", "AI model identifier")
	cmd.Flags().String("api-key", "", "API key (default: config, .secrets/, or ANTHROPIC_API_KEY / OPENAI_API_KEY)")
	cmd.Flags().Bool("cache", false, "cache summary records in SQLite")
	cmd.Flags().String("cache-path", "", "cache database path (default paper-summarizer.db)")
}
