// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

func fullRecord() types.SummaryRecord {
	return types.SummaryRecord{
		Title:         "Attention Is All You Need",
		Authors:       []string{"Ashish Vaswani", "Noam Shazeer"},
		VenueYear:     "NeurIPS 2017",
		Identifier:    "arXiv:1706.03762",
		TLDR:          "A sequence model built only from attention.",
		WhyItMatters:  "Removes recurrence from translation models.",
		Contributions: []string{"The Transformer architecture [1]"},
		Method: types.Method{
			Summary:   "Stacked self-attention and feed-forward layers.",
			Equations: []string{"Attention(Q,K,V) = softmax(QK^T / sqrt(d_k))V"},
		},
		Datasets:    []string{"WMT 2014 English-German"},
		Compute:     "8 P100 GPUs for 3.5 days",
		Baselines:   []string{"ByteNet", "ConvS2S"},
		Results:     []types.Result{{Metric: "BLEU", Value: "28.4", Notes: "EN-DE newstest2014"}},
		Limitations: []string{"Quadratic cost in sequence length"},
		Reproducibility: types.Reproducibility{
			Code:       "https://github.com/tensorflow/tensor2tensor",
			ModelSizes: "65M and 213M parameters",
		},
		Glossary:      []types.GlossaryEntry{{Term: "self-attention", Definition: "attention relating positions of one sequence"}},
		CitationsUsed: []string{"[1]", "[5]"},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestParseAndRepair_ValidRecord(t *testing.T) {
	want := fullRecord()
	body := mustJSON(t, want)

	tests := []struct {
		name  string
		input string
	}{
		{"bare", body},
		{"json fence", "```json\n" + body + "\n```"},
		{"plain fence", "```\n" + body + "\n```"},
		{"surrounding prose", "Here is the summary:\n" + body + "\nLet me know if you need more."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseAndRepair(tt.input)
			require.NoError(t, out.Err)
			assert.Equal(t, StatusOK, out.Status)
			assert.Empty(t, out.Warnings)
			assert.Equal(t, want, out.Record)
		})
	}
}

func TestParseAndRepair_MissingKeysGetEmptyValues(t *testing.T) {
	out := ParseAndRepair(`{"title": "Only A Title", "tldr": "Short."}`)

	require.Equal(t, StatusRepaired, out.Status)
	assert.Equal(t, "Only A Title", out.Record.Title)
	assert.Equal(t, "Short.", out.Record.TLDR)

	rec := out.Record
	assert.Equal(t, "", rec.VenueYear)
	assert.Equal(t, "", rec.Method.Summary)
	assert.NotNil(t, rec.Authors)
	assert.Empty(t, rec.Authors)
	assert.NotNil(t, rec.Method.Equations)
	assert.NotNil(t, rec.Results)
	assert.NotNil(t, rec.Glossary)
	assert.NotNil(t, rec.CitationsUsed)

	assert.Contains(t, out.Warnings, "authors: missing")
	assert.Contains(t, out.Warnings, "method: missing")
	assert.Contains(t, out.Warnings, "citationsUsed: missing")
	assert.NotContains(t, out.Warnings, "title: missing")
}

func TestParseAndRepair_WrongShapes(t *testing.T) {
	input := `{
		"title": ["not", "a", "string"],
		"authors": "Ada Lovelace",
		"venueYear": 2023,
		"identifier": null,
		"tldr": "Fine.",
		"whyItMatters": "",
		"contributions": 42,
		"method": "Uses attention.",
		"datasets": ["MNIST", {"name": "CIFAR"}, "", 7],
		"compute": true,
		"baselines": [],
		"results": [{"metric": "BLEU", "value": 28.4, "notes": ""}, "bogus"],
		"limitations": null,
		"reproducibility": "see appendix",
		"glossary": {"beta": "second", "alpha": "first"},
		"citationsUsed": ["[1]"]
	}`
	out := ParseAndRepair(input)
	require.Equal(t, StatusRepaired, out.Status)
	rec := out.Record

	assert.Equal(t, "", rec.Title)
	assert.Equal(t, []string{"Ada Lovelace"}, rec.Authors)
	assert.Equal(t, "2023", rec.VenueYear)
	assert.Equal(t, "", rec.Identifier)
	assert.Equal(t, "Fine.", rec.TLDR)
	assert.Equal(t, []string{}, rec.Contributions)
	assert.Equal(t, types.Method{Summary: "Uses attention.", Equations: []string{}}, rec.Method)
	assert.Equal(t, []string{"MNIST", "7"}, rec.Datasets)
	assert.Equal(t, "true", rec.Compute)
	assert.Equal(t, []types.Result{{Metric: "BLEU", Value: "28.4"}}, rec.Results)
	assert.Equal(t, []string{}, rec.Limitations)
	assert.Equal(t, types.Reproducibility{}, rec.Reproducibility)
	assert.Equal(t, []types.GlossaryEntry{
		{Term: "alpha", Definition: "first"},
		{Term: "beta", Definition: "second"},
	}, rec.Glossary)
	assert.Equal(t, []string{"[1]"}, rec.CitationsUsed)

	for _, w := range []string{
		"title: expected string, got list",
		"authors: expected list, got string",
		"venueYear: coerced number to string",
		"identifier: expected string, got null",
		"contributions: expected list, got number",
		"method: expected object, got string",
		"datasets[1]: expected string, got object",
		"datasets[3]: coerced number to string",
		"compute: coerced boolean to string",
		"results[0].value: coerced number to string",
		"results[1]: expected object, got string",
		"limitations: null",
		"reproducibility: expected object, got string",
		"glossary: expected list, got object",
	} {
		assert.Contains(t, out.Warnings, w)
	}
}

func TestParseAndRepair_SnakeCaseAliases(t *testing.T) {
	input := `{
		"title": "T",
		"authors": [],
		"venue_year": "ICML 2024",
		"doi_or_arxiv": "10.1000/xyz",
		"tldr": "",
		"why_it_matters": "It matters.",
		"contributions": [],
		"method": {"summary": "", "equations": []},
		"datasets": [],
		"compute": "",
		"baselines": [],
		"results": [],
		"limitations": [],
		"reproducibility": {"code": "", "model_sizes": "7B"},
		"glossary": [],
		"citations_used": ["[3]"]
	}`
	out := ParseAndRepair(input)
	require.Equal(t, StatusRepaired, out.Status)

	assert.Equal(t, "ICML 2024", out.Record.VenueYear)
	assert.Equal(t, "10.1000/xyz", out.Record.Identifier)
	assert.Equal(t, "It matters.", out.Record.WhyItMatters)
	assert.Equal(t, "7B", out.Record.Reproducibility.ModelSizes)
	assert.Equal(t, []string{"[3]"}, out.Record.CitationsUsed)

	assert.Equal(t, []string{
		`venueYear: accepted alias "venue_year"`,
		`identifier: accepted alias "doi_or_arxiv"`,
		`whyItMatters: accepted alias "why_it_matters"`,
		`reproducibility.modelSizes: accepted alias "model_sizes"`,
		`citationsUsed: accepted alias "citations_used"`,
	}, out.Warnings)
}

func TestParseAndRepair_UnknownFieldsIgnored(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, fullRecord())), &m))
	m["zeta"] = "x"
	m["alpha"] = 1
	m["method"].(map[string]any)["notes"] = "extra"

	out := ParseAndRepair(mustJSON(t, m))
	require.Equal(t, StatusRepaired, out.Status)
	assert.Equal(t, fullRecord(), out.Record)
	assert.Equal(t, []string{
		"method.notes: ignored unknown field",
		"alpha: ignored unknown field",
		"zeta: ignored unknown field",
	}, out.Warnings)
}

func TestParseAndRepair_Failed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"prose", "I'm sorry, I cannot summarize this paper."},
		{"array", `["a", "b"]`},
		{"broken object", `{"title": "unterminated`},
		{"not json between braces", "{this is not json}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseAndRepair(tt.input)
			assert.Equal(t, StatusFailed, out.Status)
			assert.Error(t, out.Err)
			assert.Equal(t, types.SummaryRecord{}, out.Record)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "repaired", StatusRepaired.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(9).String())
}
