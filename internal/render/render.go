// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render projects a SummaryRecord into its two output views: a
// Markdown document with a fixed section layout, and the record itself as
// indented JSON.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Placeholder stands in for any empty field. Every section is always
// rendered so consumers can rely on the headings being present.
const Placeholder = "Not specified"

const arxivAbsBase = "https://arxiv.org/abs/"

// Footer is the last line of every rendered document.
const Footer = "*Generated using automated paper summarization. Feel free to modify this summary as needed.*"

var documentTmpl = template.Must(template.New("document").Funcs(template.FuncMap{
	"na":   orPlaceholder,
	"para": paraOrPlaceholder,
	"join": joinOrPlaceholder,
	"link": identifierLink,
	"cell": tableCell,
}).Parse(`# 📄 Research Paper Summary: {{na .Title}}

**Authors:** {{join .Authors}}  
**Venue/Year:** {{na .VenueYear}}  
**DOI/arXiv:** {{link .Identifier}}

---

## 🧠 TL;DR
> {{na .TLDR}}

---

## 🚀 Why It Matters
{{para .WhyItMatters}}

---

## 🔍 Core Contributions
{{- range .Contributions}}
- {{na .}}
{{- else}}
- {{na ""}}
{{- end}}

---

## 🧪 Method
{{para .Method.Summary}}

**Key equations:**
{{- range .Method.Equations}}
  - {{na .}}
{{- else}} {{na ""}}
{{- end}}

---

## 📊 Data & Setup
- **Datasets:** {{join .Datasets}}
- **Compute:** {{na .Compute}}
- **Baselines:** {{join .Baselines}}

---

## 📈 Results
{{- if .Results}}
| Metric | Value | Notes |
|--------|-------|-------|
{{- range .Results}}
| {{cell .Metric}} | {{cell .Value}} | {{cell .Notes}} |
{{- end}}
{{- else}}
- {{na ""}}
{{- end}}

---

## ⚠️ Limitations & Risks
{{- range .Limitations}}
- {{na .}}
{{- else}}
- {{na ""}}
{{- end}}

---

## 🔁 Reproducibility
- **Code:** {{na .Reproducibility.Code}}
- **Model Sizes:** {{na .Reproducibility.ModelSizes}}

---

## 📚 Glossary
{{- range .Glossary}}
- **{{na .Term}}:** {{na .Definition}}
{{- else}}
- {{na ""}}
{{- end}}

---

## 🔗 Citations Used
{{join .CitationsUsed}}

---

`))

// Render produces both views of rec. The structured view is rec with nil
// lists made empty, serialized in field order; the document is derived from
// that same value.
func Render(rec types.SummaryRecord) (types.RenderedOutput, error) {
	rec = rec.Complete()

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, rec); err != nil {
		return types.RenderedOutput{}, fmt.Errorf("rendering document: %w", err)
	}
	buf.WriteString(Footer)
	buf.WriteByte('\n')

	structured, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return types.RenderedOutput{}, fmt.Errorf("encoding record: %w", err)
	}

	return types.RenderedOutput{
		Document:   buf.String(),
		Record:     rec,
		Structured: structured,
	}, nil
}

// orPlaceholder folds s onto one line, or returns Placeholder when empty.
func orPlaceholder(s string) string {
	if s = inline(s); s == "" {
		return Placeholder
	}
	return s
}

// paraOrPlaceholder is orPlaceholder without folding paragraph breaks.
func paraOrPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Placeholder
	}
	return s
}

func joinOrPlaceholder(items []string) string {
	var kept []string
	for _, it := range items {
		if it = inline(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return Placeholder
	}
	return strings.Join(kept, ", ")
}

// identifierLink renders arXiv identifiers as links to the abstract page.
func identifierLink(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return Placeholder
	}
	if len(id) > len("arXiv:") && strings.EqualFold(id[:len("arXiv:")], "arXiv:") {
		return fmt.Sprintf("[%s](%s%s)", id, arxivAbsBase, id[len("arXiv:"):])
	}
	return id
}

// inline folds a value onto one line so it cannot break list or blockquote
// structure.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tableCell(s string) string {
	s = inline(s)
	if s == "" {
		return " "
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
