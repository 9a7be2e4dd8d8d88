// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw extracted text into canonical text: collapsed
// whitespace, bounded blank-line runs, no control characters, repaired
// encoding artifacts. Text is idempotent under normalization.
package normalize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// maxBlankLines is the longest run of consecutive blank lines kept.
const maxBlankLines = 2

// artifactReplacer repairs characters that PDF extraction commonly emits in
// place of plain text: ligatures, non-breaking spaces, page and line
// separators, and Windows line endings.
var artifactReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\f", "\n\n",
	"\v", "\n",
	"\u2028", "\n",
	"\u2029", "\n\n",
	"\u00a0", " ",
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
)

// Normalize converts doc's raw text to CanonicalText. It fails with
// types.ErrInsufficientText when the result is shorter than
// cfg.MinTextLength characters.
func Normalize(doc types.ExtractedDocument, cfg types.NormalizeConfig) (types.CanonicalText, error) {
	text := Text(doc.RawText)
	n := utf8.RuneCountInString(text)
	if n < cfg.MinTextLength {
		return types.CanonicalText{}, fmt.Errorf("%w: %d characters after normalization, need at least %d",
			types.ErrInsufficientText, n, cfg.MinTextLength)
	}
	return types.CanonicalText{Text: text, Length: n}, nil
}

// Text applies the normalization rules to s. Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = artifactReplacer.Replace(s)
	s = stripControl(s)

	var b strings.Builder
	b.Grow(len(s))
	blank := 0
	for i, line := range strings.Split(s, "\n") {
		line = collapseSpaces(line)
		if line == "" {
			blank++
			if blank > maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return strings.TrimSpace(b.String())
}

// stripControl drops control and format characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

// collapseSpaces trims a single line and reduces each interior run of
// horizontal whitespace to one space.
func collapseSpaces(line string) string {
	return strings.Join(strings.FieldsFunc(line, unicode.IsSpace), " ")
}
