// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-summarizer/internal/pipeline"
	"github.com/pdiddy/paper-summarizer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the summarization HTTP API",
	Long: `Serve starts the HTTP API:

  GET  /api/health          liveness
  POST /api/summarize       multipart upload (field "file", .pdf or .txt)
  POST /api/summarize_url   {"url": "...", "metadata": {...}}
  POST /api/summarize_text  {"text": "...", "metadata": {...}}

Logs are JSON on stderr. The server shuts down gracefully on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		level := slog.LevelInfo
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		p, closeFn, err := pipeline.FromConfig(cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()

		logger.Info("starting paper-summarizer",
			"version", version, "backend", cfg.AI.Backend, "model", cfg.AI.Model, "cache", cfg.Cache.Enabled)
		return server.New(cfg.Server, p, logger, version).ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	addAIFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
