// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SummaryRecord is the fixed-schema summary of one paper. Every field is
// always present; the empty string or empty list means "unknown". Field
// order here is the serialization order of the structured output.
type SummaryRecord struct {
	Title           string          `json:"title" yaml:"title"`
	Authors         []string        `json:"authors" yaml:"authors"`
	VenueYear       string          `json:"venueYear" yaml:"venue_year"`
	Identifier      string          `json:"identifier" yaml:"identifier"`
	TLDR            string          `json:"tldr" yaml:"tldr"`
	WhyItMatters    string          `json:"whyItMatters" yaml:"why_it_matters"`
	Contributions   []string        `json:"contributions" yaml:"contributions"`
	Method          Method          `json:"method" yaml:"method"`
	Datasets        []string        `json:"datasets" yaml:"datasets"`
	Compute         string          `json:"compute" yaml:"compute"`
	Baselines       []string        `json:"baselines" yaml:"baselines"`
	Results         []Result        `json:"results" yaml:"results"`
	Limitations     []string        `json:"limitations" yaml:"limitations"`
	Reproducibility Reproducibility `json:"reproducibility" yaml:"reproducibility"`
	Glossary        []GlossaryEntry `json:"glossary" yaml:"glossary"`
	CitationsUsed   []string        `json:"citationsUsed" yaml:"citations_used"`
}

// Method describes the paper's approach.
type Method struct {
	Summary   string   `json:"summary" yaml:"summary"`
	Equations []string `json:"equations" yaml:"equations"`
}

// Result is one reported metric.
type Result struct {
	Metric string `json:"metric" yaml:"metric"`
	Value  string `json:"value" yaml:"value"`
	Notes  string `json:"notes" yaml:"notes"`
}

// Reproducibility records artifact availability.
type Reproducibility struct {
	Code       string `json:"code" yaml:"code"`
	ModelSizes string `json:"modelSizes" yaml:"model_sizes"`
}

// GlossaryEntry defines one term used by the paper.
type GlossaryEntry struct {
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
}

// Complete returns a copy of r with every nil list replaced by an empty
// one, so serialized records show [] rather than null.
func (r SummaryRecord) Complete() SummaryRecord {
	r.Authors = emptyIfNil(r.Authors)
	r.Contributions = emptyIfNil(r.Contributions)
	r.Method.Equations = emptyIfNil(r.Method.Equations)
	r.Datasets = emptyIfNil(r.Datasets)
	r.Baselines = emptyIfNil(r.Baselines)
	r.Limitations = emptyIfNil(r.Limitations)
	r.CitationsUsed = emptyIfNil(r.CitationsUsed)
	if r.Results == nil {
		r.Results = []Result{}
	}
	if r.Glossary == nil {
		r.Glossary = []GlossaryEntry{}
	}
	return r
}

// Identity returns the record's identity fields.
func (r SummaryRecord) Identity() KnownMetadata {
	return KnownMetadata{
		Title:      r.Title,
		Authors:    r.Authors,
		VenueYear:  r.VenueYear,
		Identifier: r.Identifier,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RenderedOutput holds the two synchronized views of one SummaryRecord.
// Structured is Record serialized as indented JSON in field order.
type RenderedOutput struct {
	Document   string        `json:"markdown" yaml:"markdown"`
	Record     SummaryRecord `json:"json" yaml:"json"`
	Structured []byte        `json:"-" yaml:"-"`
}
