// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-summarizer/pkg/types"
)

// statusClientClosedRequest is the de-facto status for requests the
// client abandoned.
const statusClientClosedRequest = 499

var allowedExtensions = map[string]bool{".pdf": true, ".txt": true}

// requestMetadata is the caller-supplied identity metadata. Authors may be
// a comma-separated string or a list.
type requestMetadata struct {
	Title      string     `json:"title"`
	Authors    authorList `json:"authors"`
	VenueYear  string     `json:"venue_year"`
	DOIOrArxiv string     `json:"doi_or_arxiv"`
}

func (m requestMetadata) known() types.KnownMetadata {
	return types.KnownMetadata{}.Overlay(types.KnownMetadata{
		Title:      m.Title,
		Authors:    m.Authors,
		VenueYear:  m.VenueYear,
		Identifier: m.DOIOrArxiv,
	})
}

type authorList []string

func (a *authorList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = types.ParseAuthors(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("authors must be a string or a list of strings")
	}
	*a = list
	return nil
}

type urlRequest struct {
	URL      string          `json:"url"`
	Metadata requestMetadata `json:"metadata"`
}

type textRequest struct {
	Text     string          `json:"text"`
	Metadata requestMetadata `json:"metadata"`
}

type summaryResponse struct {
	Success   bool                `json:"success"`
	Markdown  string              `json:"markdown"`
	JSON      types.SummaryRecord `json:"json"`
	Metadata  types.KnownMetadata `json:"metadata"`
	Warnings  []string            `json:"warnings"`
	Source    string              `json:"source"`
	Cached    bool                `json:"cached"`
	RequestID string              `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "paper-summarizer",
		"version": s.version,
	})
}

func (s *Server) handleSummarizeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		if isTooLarge(err) {
			s.tooLarge(w, r)
			return
		}
		s.badRequest(w, r, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.badRequest(w, r, "No file selected")
		return
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		s.badRequest(w, r, "File type not allowed. Please upload PDF or TXT files.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("reading upload: %w", err))
		return
	}

	authors := types.ParseAuthors(r.FormValue("authors"))
	meta := requestMetadata{
		Title:      r.FormValue("title"),
		Authors:    authors,
		VenueYear:  r.FormValue("venue_year"),
		DOIOrArxiv: r.FormValue("doi_or_arxiv"),
	}

	desc := types.FileBytes{
		Data:        data,
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
	}
	s.run(w, r, desc, meta.known())
}

func (s *Server) handleSummarizeURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.badRequest(w, r, "URL is required")
		return
	}
	s.run(w, r, types.RemoteURL{URL: strings.TrimSpace(req.URL)}, req.Metadata.known())
}

func (s *Server) handleSummarizeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.badRequest(w, r, "Text is required")
		return
	}
	s.run(w, r, types.RawText{Text: req.Text}, req.Metadata.known())
}

// run executes the pipeline under the request timeout and writes the result.
func (s *Server) run(w http.ResponseWriter, r *http.Request, desc types.InputDescriptor, known types.KnownMetadata) {
	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, desc, known)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Success:   true,
		Markdown:  res.Output.Document,
		JSON:      res.Output.Record,
		Metadata:  res.Metadata,
		Warnings:  warnings,
		Source:    res.Source,
		Cached:    res.Cached,
		RequestID: RequestID(r.Context()),
	})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isTooLarge(err) {
			s.tooLarge(w, r)
		} else {
			s.badRequest(w, r, "Invalid JSON body: "+err.Error())
		}
		return false
	}
	return true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request", RequestID: RequestID(r.Context())})
}

func (s *Server) tooLarge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
		Error:     fmt.Sprintf("File too large. Maximum size is %dMB.", s.cfg.MaxUploadBytes>>20),
		Kind:      "too_large",
		RequestID: RequestID(r.Context()),
	})
}

// writeError maps an error kind to a status code and logs it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := types.Kind(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "request_id", RequestID(r.Context()), "kind", kind, "error", err)
	} else {
		s.logger.WarnContext(r.Context(), "request rejected", "request_id", RequestID(r.Context()), "kind", kind, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Kind:      kind,
		Retryable: types.IsRetryable(err),
		RequestID: RequestID(r.Context()),
	})
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, types.ErrExtraction), errors.Is(err, types.ErrInsufficientText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrUnreachableSource),
		errors.Is(err, types.ErrSummarization),
		errors.Is(err, types.ErrSchemaRepairExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
