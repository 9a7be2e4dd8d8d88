// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-summarizer/internal/pipeline"
	"github.com/pdiddy/paper-summarizer/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize one paper from a PDF, URL, or text",
	Long: `Summarize reads exactly one input (--pdf, --url, --text, or --text-file),
extracts and normalizes its text, asks the AI backend for a structured
summary, and writes the Markdown document and/or the JSON record.

--url accepts http(s) URLs as well as bare identifiers: arXiv ids
(2301.07041, arXiv:2301.07041v2, hep-th/9901001) and DOIs (10.1145/...).

Identity flags (--title, --authors, --venue-year, --doi-arxiv) take
precedence over anything discovered in the paper or reported by the model.

At least one output option is required.`,
	Example: `  paper-summarizer summarize --pdf paper.pdf -o summary.md -j summary.json
  paper-summarizer summarize --url 2301.07041 --print-markdown
  paper-summarizer summarize --text-file abstract.txt --title "My Paper" --print-json`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

func init() {
	registerSummarizeFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func registerSummarizeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("pdf", "", "path to PDF file")
	f.String("url", "", "URL or arXiv/DOI identifier of the paper")
	f.String("text", "", "raw paper text")
	f.String("text-file", "", "path to text file")

	f.String("title", "", "paper title")
	f.String("authors", "", "paper authors (comma or semicolon separated)")
	f.String("venue-year", "", `venue and year (e.g. "ICML 2023")`)
	f.String("doi-arxiv", "", "DOI or arXiv ID")

	f.StringP("output", "o", "", "output file for the Markdown summary")
	f.StringP("json-output", "j", "", "output file for the JSON record")
	f.String("yaml-output", "", "output file for the record as YAML")
	f.Bool("print-markdown", false, "print Markdown to stdout")
	f.Bool("print-json", false, "print JSON to stdout")
	f.BoolP("quiet", "q", false, "suppress progress messages")
	addAIFlags(cmd)

	cmd.MarkFlagsOneRequired("pdf", "url", "text", "text-file")
	cmd.MarkFlagsMutuallyExclusive("pdf", "url", "text", "text-file")
	cmd.MarkFlagsOneRequired("output", "json-output", "yaml-output", "print-markdown", "print-json")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	progress := func(format string, a ...any) {
		if !quiet {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	desc, err := inputFromFlags(cmd, progress)
	if err != nil {
		return err
	}

	progress("Initializing %s backend (%s)...", cfg.AI.Backend, cfg.AI.Model)
	p, closeFn, err := pipeline.FromConfig(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer closeFn()

	progress("Analyzing paper... This may take a few moments.")
	res, err := p.Run(cmd.Context(), desc, metadataFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("processing paper (%s): %w", types.Kind(err), err)
	}
	if res.Cached {
		progress("Analysis complete (cached).")
	} else {
		progress("Analysis complete!")
	}
	for _, w := range res.Warnings {
		progress("warning: %s", w)
	}

	return writeOutputs(cmd, res.Output, cmd.OutOrStdout(), progress)
}

// inputFromFlags builds the input descriptor from whichever input flag is set.
func inputFromFlags(cmd *cobra.Command, progress func(string, ...any)) (types.InputDescriptor, error) {
	f := cmd.Flags()
	pdfPath, _ := f.GetString("pdf")
	url, _ := f.GetString("url")
	text, _ := f.GetString("text")
	textFile, _ := f.GetString("text-file")

	switch {
	case pdfPath != "":
		data, err := os.ReadFile(pdfPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
			}
			return nil, fmt.Errorf("reading %s: %w", pdfPath, err)
		}
		progress("Processing PDF: %s", pdfPath)
		return types.FileBytes{Data: data, Filename: filepath.Base(pdfPath), ContentType: "application/pdf"}, nil

	case url != "":
		progress("Fetching from URL: %s", url)
		return types.RemoteURL{URL: strings.TrimSpace(url)}, nil

	case textFile != "":
		data, err := os.ReadFile(textFile)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("text file not found: %s", textFile)
			}
			return nil, fmt.Errorf("reading %s: %w", textFile, err)
		}
		progress("Processing text file: %s", textFile)
		return types.RawText{Text: string(data)}, nil

	case text != "":
		progress("Processing provided text...")
		return types.RawText{Text: text}, nil
	}
	return nil, fmt.Errorf("one of --pdf, --url, --text, or --text-file is required")
}

func metadataFromFlags(cmd *cobra.Command) types.KnownMetadata {
	f := cmd.Flags()
	title, _ := f.GetString("title")
	authors, _ := f.GetString("authors")
	venue, _ := f.GetString("venue-year")
	id, _ := f.GetString("doi-arxiv")
	return types.KnownMetadata{}.Overlay(types.KnownMetadata{
		Title:      title,
		Authors:    types.ParseAuthors(authors),
		VenueYear:  venue,
		Identifier: id,
	})
}

const banner = "================================================================================"

// writeOutputs saves and prints the requested views of out.
func writeOutputs(cmd *cobra.Command, out types.RenderedOutput, stdout io.Writer, progress func(string, ...any)) error {
	f := cmd.Flags()

	if path, _ := f.GetString("output"); path != "" {
		if err := os.WriteFile(path, []byte(out.Document), 0o644); err != nil {
			return fmt.Errorf("saving Markdown: %w", err)
		}
		progress("Markdown summary saved to: %s", path)
	}
	if path, _ := f.GetString("json-output"); path != "" {
		if err := os.WriteFile(path, append(out.Structured, '\n'), 0o644); err != nil {
			return fmt.Errorf("saving JSON: %w", err)
		}
		progress("JSON data saved to: %s", path)
	}
	if path, _ := f.GetString("yaml-output"); path != "" {
		data, err := yaml.Marshal(out.Record)
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("saving YAML: %w", err)
		}
		progress("YAML data saved to: %s", path)
	}

	if ok, _ := f.GetBool("print-markdown"); ok {
		fmt.Fprintf(stdout, "\n%s\nMARKDOWN SUMMARY\n%s\n%s", banner, banner, out.Document)
	}
	if ok, _ := f.GetBool("print-json"); ok {
		fmt.Fprintf(stdout, "\n%s\nJSON DATA\n%s\n%s\n", banner, banner, out.Structured)
	}
	return nil
}
