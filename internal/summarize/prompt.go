// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"encoding/json"
	"sync"
	"text/template"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// summaryPromptTmpl is the single instruction sent for each paper. It
// combines the faithfulness rules, the record shape, and the paper text.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an expert research assistant. Produce a faithful structured summary of the academic paper below.

Rules:
- Use ONLY information present in the paper text. Do not add outside knowledge.
- Preserve citation markers exactly as they appear (e.g. [12], (Smith et al., 2020)).
- Reproduce equations verbatim; do not simplify or re-derive them.
- When quoting the paper, put the exact phrase in quotation marks.
- If the paper does not state something, use an empty string or an empty list. Never guess numbers, names, datasets, or links.
- Keep the TL;DR to one or two sentences.

Respond with a single JSON object with exactly these keys and value shapes:
{{.Skeleton}}

Field guide:
- title, authors, venueYear, identifier: as stated in the paper (identifier is a DOI or arXiv id)
- tldr: one or two sentence summary
- whyItMatters: the significance of the work
- contributions: the main contributions, one per entry
- method.summary: how the approach works; method.equations: key equations verbatim
- datasets, baselines: names as written in the paper
- compute: hardware and training budget if stated
- results: one entry per reported metric, value exactly as reported
- limitations: limitations the authors acknowledge
- reproducibility.code: code or data links; reproducibility.modelSizes: parameter counts
- glossary: technical terms with definitions taken from the paper
- citationsUsed: citation markers that appear in the text
{{if .Strict}}
IMPORTANT: Your previous response could not be parsed. Return ONLY the JSON object. No prose before or after it, no markdown code fences.
{{end}}
Paper text:
{{.Text}}
`))

var (
	skeletonOnce sync.Once
	skeleton     string
)

// recordSkeleton is an empty SummaryRecord rendered as indented JSON; it
// shows the model every key and its value shape.
func recordSkeleton() string {
	skeletonOnce.Do(func() {
		b, _ := json.MarshalIndent(types.SummaryRecord{}.Complete(), "", "  ")
		skeleton = string(b)
	})
	return skeleton
}

// renderPrompt executes the summary prompt for one canonical text. strict
// appends the JSON-only reminder used on the retry.
func renderPrompt(text string, strict bool) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Skeleton string
		Text     string
		Strict   bool
	}{Skeleton: recordSkeleton(), Text: text, Strict: strict}
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
