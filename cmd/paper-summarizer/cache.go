// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-summarizer/internal/cache"
	"github.com/pdiddy/paper-summarizer/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the summary record cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached summaries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tCREATED\tMODEL\tSOURCE\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				shortKey(e.Key), e.CreatedAt.Local().Format(time.DateTime), e.Model, e.Source, e.Record.Title)
		}
		return tw.Flush()
	},
}

var cacheRmCmd = &cobra.Command{
	Use:   "rm KEY",
	Short: "Remove one cached summary by its full key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(cmd.Context(), args[0])
	},
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}

// openCache opens the configured cache database whether or not caching is
// enabled for summarize runs.
func openCache(cmd *cobra.Command) (*cache.Store, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if p, _ := cmd.Flags().GetString("cache-path"); p != "" {
		cfg.Cache.Path = p
	}
	return cache.Open(cfg.Cache)
}

func init() {
	cacheCmd.PersistentFlags().String("cache-path", "", "cache database path (default paper-summarizer.db)")
	cacheListCmd.Flags().Int("limit", 50, "maximum entries to list")
	cacheListCmd.Flags().Bool("json", false, "output entries as JSON")

	cacheCmd.AddCommand(cacheListCmd, cacheRmCmd)
	rootCmd.AddCommand(cacheCmd)
}
