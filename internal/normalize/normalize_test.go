// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"already canonical", "Attention is all you need.", "Attention is all you need."},
		{"space runs", "a    b \t\t c", "a b c"},
		{"line breaks kept", "line one\nline two", "line one\nline two"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"two blank lines kept", "a\n\n\nb", "a\n\n\nb"},
		{"three blank lines collapsed", "a\n\n\n\nb", "a\n\n\nb"},
		{"many blank lines collapsed", "a" + strings.Repeat("\n", 12) + "b", "a\n\n\nb"},
		{"whitespace-only lines are blank", "a\n  \n\t\n \n \nb", "a\n\n\nb"},
		{"control chars stripped", "a\x00b\x07c\x1bd", "abcd"},
		{"tab between words", "left\tright", "left right"},
		{"form feed page break", "page one\fpage two", "page one\n\npage two"},
		{"ligatures repaired", "\ufb01eld e\ufb03cient", "field efficient"},
		{"nbsp", "a\u00a0\u00a0b", "a b"},
		{"soft hyphen and zero width", "co\u00adm\u200bputer", "computer"},
		{"trimmed", "  \n\n  body text \n\n  ", "body text"},
		{"invalid utf8 dropped", "ok\xffok", "okok"},
		{"line leading spaces trimmed", "   indented\n    more", "indented\nmore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.input)
			if got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"  leading and trailing  ",
		"a\n\n\n\n\n\nb\n\n\n\nc",
		"\r\n\r\n\r\n\r\nx\r\n",
		"\t\ttabs\t\tand  spaces\t",
		"\x00\x01\x02mixed\x7fcontrol\u0085chars",
		"page 1\f\f\fpage 2\v\vpage 3",
		"\u00a0\u2028\u2029sep",
		"\ufb00\ufb01\ufb02\ufb03\ufb04",
		"\u00a0 \u00a0 \n \u00a0\n\n\n\n\u00a0x",
		"line\n \n \n \n \nline",
		"bad\xc3\x28utf8",
		strings.Repeat("word ", 50) + "\n\n\n\n" + strings.Repeat("\tmore\t", 20),
	}
	for _, in := range inputs {
		once := Text(in)
		twice := Text(once)
		if once != twice {
			t.Errorf("Text not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
		assert.NotContains(t, once, "\n\n\n\n", "more than two blank lines in %q", once)
		assert.Equal(t, strings.TrimSpace(once), once)
	}
}

func TestNormalizeMinimumLength(t *testing.T) {
	cfg := types.NormalizeConfig{MinTextLength: 100}

	_, err := Normalize(types.ExtractedDocument{RawText: strings.Repeat("a", 99)}, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInsufficientText), "got %v", err)

	ct, err := Normalize(types.ExtractedDocument{RawText: strings.Repeat("a", 100)}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, ct.Length)
	assert.Equal(t, strings.Repeat("a", 100), ct.Text)
}

func TestNormalizeLengthCountsAfterCleanup(t *testing.T) {
	cfg := types.NormalizeConfig{MinTextLength: 100}

	// 99 letters padded with whitespace that normalization removes.
	raw := "   \n\n" + strings.Repeat("a", 99) + "\x00\x00\t\n\n\n\n"
	_, err := Normalize(types.ExtractedDocument{RawText: raw}, cfg)
	assert.ErrorIs(t, err, types.ErrInsufficientText)
}

func TestNormalizeCountsRunes(t *testing.T) {
	cfg := types.NormalizeConfig{MinTextLength: 100}
	ct, err := Normalize(types.ExtractedDocument{RawText: strings.Repeat("é", 100)}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 100, ct.Length)
}

func TestNormalizeZeroMinimum(t *testing.T) {
	ct, err := Normalize(types.ExtractedDocument{RawText: " x "}, types.NormalizeConfig{})
	require.NoError(t, err)
	assert.Equal(t, types.CanonicalText{Text: "x", Length: 1}, ct)
}
