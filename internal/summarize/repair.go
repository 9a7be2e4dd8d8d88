// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// Status tags the result of parsing a model response.
type Status int

const (
	// StatusOK means the response matched the record schema as returned.
	StatusOK Status = iota
	// StatusRepaired means the response decoded but some fields were
	// missing or malformed and were replaced with empty values.
	StatusRepaired
	// StatusFailed means the response was not a JSON object at all.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRepaired:
		return "repaired"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of ParseAndRepair. Record is complete
// (every list non-nil) unless Status is StatusFailed, in which case Err is
// set and Record is the zero value.
type Outcome struct {
	Status   Status
	Record   types.SummaryRecord
	Warnings []string
	Err      error
}

// ParseAndRepair decodes a model response into a SummaryRecord. Markdown
// fences and prose around the JSON object are tolerated. Keys that are
// missing or of the wrong shape get the empty value of their type and one
// warning each; content is never invented.
func ParseAndRepair(text string) Outcome {
	candidate, err := extractJSONObject(text)
	if err != nil {
		return Outcome{Status: StatusFailed, Err: err}
	}

	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("decoding response JSON: %w", err)}
	}
	if obj == nil {
		return Outcome{Status: StatusFailed, Err: errors.New("response JSON is null")}
	}

	if Validate(candidate) == nil {
		var rec types.SummaryRecord
		if err := json.Unmarshal(candidate, &rec); err == nil {
			return Outcome{Status: StatusOK, Record: rec.Complete()}
		}
	}

	r := &repairer{}
	rec := r.record(obj)
	if len(r.warnings) == 0 {
		return Outcome{Status: StatusOK, Record: rec}
	}
	return Outcome{Status: StatusRepaired, Record: rec, Warnings: r.warnings}
}

// extractJSONObject strips code fences and returns the span from the first
// '{' to the last '}'.
func extractJSONObject(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in response")
	}
	return []byte(s[start : end+1]), nil
}

// fieldAliases lists accepted alternative spellings of record keys, in
// preference order.
var fieldAliases = map[string][]string{
	"venueYear":     {"venue_year"},
	"whyItMatters":  {"why_it_matters"},
	"citationsUsed": {"citations_used", "citations"},
	"modelSizes":    {"model_sizes"},
	"identifier":    {"doi_or_arxiv"},
	"tldr":          {"tl_dr"},
}

// repairer accumulates warnings while coercing a decoded object.
type repairer struct {
	warnings []string
}

func (r *repairer) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// take removes key (or one of its aliases) from obj and returns its value.
// The path prefixes warnings for nested objects.
func (r *repairer) take(obj map[string]any, path, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		delete(obj, key)
		return v, true
	}
	for _, alias := range fieldAliases[key] {
		if v, ok := obj[alias]; ok {
			delete(obj, alias)
			r.warnf("%s: accepted alias %q", path+key, alias)
			return v, true
		}
	}
	r.warnf("%s: missing", path+key)
	return nil, false
}

func (r *repairer) record(obj map[string]any) types.SummaryRecord {
	var rec types.SummaryRecord
	rec.Title = r.str(obj, "", "title")
	rec.Authors = r.strList(obj, "", "authors")
	rec.VenueYear = r.str(obj, "", "venueYear")
	rec.Identifier = r.str(obj, "", "identifier")
	rec.TLDR = r.str(obj, "", "tldr")
	rec.WhyItMatters = r.str(obj, "", "whyItMatters")
	rec.Contributions = r.strList(obj, "", "contributions")
	rec.Method = r.method(obj)
	rec.Datasets = r.strList(obj, "", "datasets")
	rec.Compute = r.str(obj, "", "compute")
	rec.Baselines = r.strList(obj, "", "baselines")
	rec.Results = r.results(obj)
	rec.Limitations = r.strList(obj, "", "limitations")
	rec.Reproducibility = r.reproducibility(obj)
	rec.Glossary = r.glossary(obj)
	rec.CitationsUsed = r.strList(obj, "", "citationsUsed")
	r.unknown(obj, "")
	return rec.Complete()
}

func (r *repairer) unknown(obj map[string]any, path string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.warnf("%s: ignored unknown field", path+k)
	}
}

func (r *repairer) str(obj map[string]any, path, key string) string {
	v, ok := r.take(obj, path, key)
	if !ok {
		return ""
	}
	s, _ := r.scalar(path+key, v)
	return s
}

// scalar returns the text of a string, or of a number or boolean with a
// coercion warning. Anything else is a shape mismatch.
func (r *repairer) scalar(path string, v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		r.warnf("%s: coerced number to string", path)
		return x.String(), true
	case bool:
		r.warnf("%s: coerced boolean to string", path)
		return strconv.FormatBool(x), true
	default:
		r.warnf("%s: expected string, got %s", path, shape(v))
		return "", false
	}
}

func (r *repairer) strList(obj map[string]any, path, key string) []string {
	v, ok := r.take(obj, path, key)
	if !ok {
		return []string{}
	}
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := r.scalar(fmt.Sprintf("%s[%d]", path+key, i), item)
			if ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		r.warnf("%s: expected list, got string", path+key)
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
		return []string{}
	case nil:
		r.warnf("%s: null", path+key)
		return []string{}
	default:
		r.warnf("%s: expected list, got %s", path+key, shape(v))
		return []string{}
	}
}

func (r *repairer) object(obj map[string]any, path, key string) (map[string]any, bool) {
	v, ok := r.take(obj, path, key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		r.warnf("%s: expected object, got %s", path+key, shape(v))
		return nil, false
	}
	return m, true
}

func (r *repairer) method(obj map[string]any) types.Method {
	if v, ok := obj["method"].(string); ok {
		delete(obj, "method")
		r.warnf("method: expected object, got string")
		return types.Method{Summary: strings.TrimSpace(v), Equations: []string{}}
	}
	m, ok := r.object(obj, "", "method")
	if !ok {
		return types.Method{Equations: []string{}}
	}
	out := types.Method{
		Summary:   r.str(m, "method.", "summary"),
		Equations: r.strList(m, "method.", "equations"),
	}
	r.unknown(m, "method.")
	return out
}

func (r *repairer) reproducibility(obj map[string]any) types.Reproducibility {
	m, ok := r.object(obj, "", "reproducibility")
	if !ok {
		return types.Reproducibility{}
	}
	out := types.Reproducibility{
		Code:       r.str(m, "reproducibility.", "code"),
		ModelSizes: r.str(m, "reproducibility.", "modelSizes"),
	}
	r.unknown(m, "reproducibility.")
	return out
}

func (r *repairer) results(obj map[string]any) []types.Result {
	items, ok := r.list(obj, "results")
	if !ok {
		return []types.Result{}
	}
	out := make([]types.Result, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			r.warnf("results[%d]: expected object, got %s", i, shape(item))
			continue
		}
		p := fmt.Sprintf("results[%d].", i)
		res := types.Result{
			Metric: r.str(m, p, "metric"),
			Value:  r.str(m, p, "value"),
			Notes:  r.str(m, p, "notes"),
		}
		r.unknown(m, p)
		out = append(out, res)
	}
	return out
}

func (r *repairer) glossary(obj map[string]any) []types.GlossaryEntry {
	// A term-to-definition object is accepted in place of the list form.
	if m, ok := obj["glossary"].(map[string]any); ok {
		delete(obj, "glossary")
		r.warnf("glossary: expected list, got object")
		terms := make([]string, 0, len(m))
		for t := range m {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		out := make([]types.GlossaryEntry, 0, len(terms))
		for _, t := range terms {
			def, _ := r.scalar("glossary."+t, m[t])
			out = append(out, types.GlossaryEntry{Term: strings.TrimSpace(t), Definition: def})
		}
		return out
	}

	items, ok := r.list(obj, "glossary")
	if !ok {
		return []types.GlossaryEntry{}
	}
	out := make([]types.GlossaryEntry, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			r.warnf("glossary[%d]: expected object, got %s", i, shape(item))
			continue
		}
		p := fmt.Sprintf("glossary[%d].", i)
		e := types.GlossaryEntry{
			Term:       r.str(m, p, "term"),
			Definition: r.str(m, p, "definition"),
		}
		r.unknown(m, p)
		out = append(out, e)
	}
	return out
}

func (r *repairer) list(obj map[string]any, key string) ([]any, bool) {
	v, ok := r.take(obj, "", key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			r.warnf("%s: null", key)
		} else {
			r.warnf("%s: expected list, got %s", key, shape(v))
		}
		return nil, false
	}
	return items, true
}

// shape names the JSON type of v for warnings.
func shape(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
