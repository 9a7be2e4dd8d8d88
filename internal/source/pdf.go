// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// pdfSignature is the magic prefix of every PDF file.
var pdfSignature = []byte("%PDF-")

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfSignature)
}

// fromPDF extracts page text in page order. Pages that yield no text are
// recorded as warnings; the extraction fails only when no page yields text.
// Document-info Title and Author become provenance metadata.
func (r *Resolver) fromPDF(doc types.ExtractedDocument, data []byte) (types.ExtractedDocument, error) {
	text, warnings, err := extractPDFPages(data)
	if err != nil {
		return types.ExtractedDocument{}, fmt.Errorf("%w: %s: %w", types.ErrExtraction, doc.SourceIdentifier, err)
	}

	md, err := pdfInfo(data)
	if err != nil {
		r.logger.Debug("PDF document info unavailable", "source", doc.SourceIdentifier, "error", err)
	}

	doc.Format = types.FormatPDF
	doc.RawText = text
	doc.Warnings = append(doc.Warnings, warnings...)
	doc.Metadata = doc.Metadata.Overlay(md)
	return doc, nil
}

// extractPDFPages returns the concatenated text of all pages that yield
// text, and one warning per page that does not.
func extractPDFPages(data []byte) (text string, warnings []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("corrupt PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("opening PDF: %w", err)
	}

	n := reader.NumPage()
	if n == 0 {
		return "", nil, errors.New("PDF has no pages")
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		pt, perr := pageText(reader, i)
		switch {
		case perr != nil:
			warnings = append(warnings, fmt.Sprintf("page %d: text extraction failed: %v", i, perr))
		case strings.TrimSpace(pt) == "":
			warnings = append(warnings, fmt.Sprintf("page %d: no extractable text (image-only or empty page)", i))
		default:
			pages = append(pages, pt)
		}
	}

	if len(pages) == 0 {
		return "", warnings, fmt.Errorf("none of %d pages yielded text", n)
	}
	return strings.Join(pages, pageSeparator), warnings, nil
}

// pageText extracts one page, converting decoder panics on malformed
// content streams into errors so one bad page does not abort the document.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	p := reader.Page(num)
	if p.V.IsNull() {
		return "", errors.New("missing page object")
	}
	return p.GetPlainText(nil)
}

var disablePDFCPUConfig sync.Once

// pdfInfo reads the document information dictionary.
func pdfInfo(data []byte) (md types.KnownMetadata, err error) {
	disablePDFCPUConfig.Do(api.DisableConfigDir)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu: %v", rec)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return types.KnownMetadata{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	md.Title = strings.TrimSpace(ctx.Title)
	if author := strings.TrimSpace(ctx.Author); author != "" {
		md.Authors = types.ParseAuthors(author)
	}
	return md, nil
}
