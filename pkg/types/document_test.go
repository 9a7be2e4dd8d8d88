// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputDescriptorKind(t *testing.T) {
	for _, tt := range []struct {
		desc InputDescriptor
		want SourceKind
	}{
		{FileBytes{Filename: "a.pdf"}, SourceFile},
		{RemoteURL{URL: "https://arxiv.org/abs/1706.03762"}, SourceURL},
		{RawText{Text: "x"}, SourceText},
	} {
		assert.Equal(t, tt.want, tt.desc.Kind())
	}
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"Ada Lovelace", []string{"Ada Lovelace"}},
		{"A, B,C", []string{"A", "B", "C"}},
		{"A; B", []string{"A", "B"}},
		{" A ,, ; B ", []string{"A", "B"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAuthors(tt.in), "%q", tt.in)
	}
}

func TestKnownMetadataOverlay(t *testing.T) {
	base := KnownMetadata{
		Title:      "Doc Title",
		Authors:    []string{"Doc Author"},
		VenueYear:  "arXiv 2017",
		Identifier: "arXiv:1706.03762",
	}

	t.Run("empty top keeps base", func(t *testing.T) {
		assert.Equal(t, base, base.Overlay(KnownMetadata{}))
	})

	t.Run("blank fields do not override", func(t *testing.T) {
		got := base.Overlay(KnownMetadata{Title: "  ", Authors: []string{"", " "}})
		assert.Equal(t, base, got)
	})

	t.Run("set fields win and are trimmed", func(t *testing.T) {
		got := base.Overlay(KnownMetadata{Title: " Caller Title ", Authors: []string{" X ", "", "Y"}})
		assert.Equal(t, KnownMetadata{
			Title:      "Caller Title",
			Authors:    []string{"X", "Y"},
			VenueYear:  "arXiv 2017",
			Identifier: "arXiv:1706.03762",
		}, got)
	})
}

func TestKnownMetadataIsEmpty(t *testing.T) {
	assert.True(t, KnownMetadata{}.IsEmpty())
	assert.True(t, KnownMetadata{Title: " ", Authors: []string{""}}.IsEmpty())
	assert.False(t, KnownMetadata{VenueYear: "ICML 2024"}.IsEmpty())
	assert.False(t, KnownMetadata{Authors: []string{"A"}}.IsEmpty())
}

func TestSummaryRecordComplete(t *testing.T) {
	rec := SummaryRecord{Title: "T"}.Complete()
	assert.NotNil(t, rec.Authors)
	assert.NotNil(t, rec.Method.Equations)
	assert.NotNil(t, rec.Results)
	assert.NotNil(t, rec.Glossary)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "null")

	kept := SummaryRecord{Datasets: []string{"WMT14"}}.Complete()
	assert.Equal(t, []string{"WMT14"}, kept.Datasets)
}

func TestSummaryRecordIdentity(t *testing.T) {
	rec := SummaryRecord{Title: "T", Authors: []string{"A"}, VenueYear: "V", Identifier: "I", TLDR: "ignored"}
	assert.Equal(t, KnownMetadata{Title: "T", Authors: []string{"A"}, VenueYear: "V", Identifier: "I"}, rec.Identity())
}
