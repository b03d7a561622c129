package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/history"
)

var errBadRequest = errors.New("bad request")

// Accepted request body media types. Anything else is read as raw text.
const (
	mediaJSON      = "application/json"
	mediaForm      = "application/x-www-form-urlencoded"
	mediaMultipart = "multipart/form-data"
)

// convertRequest is the JSON body of /convert and /preview.
type convertRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

type previewResponse struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	HTML       string `json:"html"`
	CharCount  int    `json:"charCount"`
	BlockCount int    `json:"blockCount"`
}

type historyItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
	CharCount int       `json:"charCount"`
}

// handleConvert converts the request text and streams the document back
// as an attachment.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	in, err := s.readInput(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.conv.Convert(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if s.store == nil {
		s.deliver(w, r, res.Artifact)
		return
	}

	// The ID header must precede the body; the record itself is written
	// only once the download went through.
	rec := md2doc.NewHistoryRecord(in.Text, res, s.now())
	w.Header().Set(HistoryIDHeader, rec.ID)
	if !s.deliver(w, r, res.Artifact) {
		return
	}
	if err := s.store.Add(history.Record(rec)); err != nil {
		s.logger.Warn("recording history", "id", rec.ID, "error", err)
	}
}

// handlePreview renders without exporting and returns the markup as JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	in, err := s.readInput(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.HTMLOnly = true

	res, err := s.conv.Convert(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, previewResponse{
		Title:      res.Title,
		Body:       res.Body,
		HTML:       res.HTML,
		CharCount:  res.CharCount,
		BlockCount: res.BlockCount,
	})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "history is disabled")
		return
	}

	records, err := s.store.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Preview:   rec.Preview,
			CharCount: rec.CharCount,
		})
	}
	respondJSON(w, http.StatusOK, items)
}

// handleHistoryDownload re-exports a recorded conversion.
func (s *Server) handleHistoryDownload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "history is disabled")
		return
	}

	rec, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	art, err := s.conv.Export(r.Context(), rec.HTML)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.deliver(w, r, art)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// readInput extracts the text and title from a JSON, form or raw body and
// rejects empty text.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (md2doc.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var in md2doc.Input
	switch mediaType {
	case mediaJSON:
		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return md2doc.Input{}, fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err)
		}
		in = md2doc.Input{Text: req.Text, Title: req.Title}

	case mediaForm, mediaMultipart:
		if err := r.ParseMultipartForm(s.maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return md2doc.Input{}, fmt.Errorf("%w: invalid form: %w", errBadRequest, err)
		}
		in = md2doc.Input{Text: r.PostFormValue("text"), Title: r.PostFormValue("title")}

	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return md2doc.Input{}, fmt.Errorf("%w: reading body: %w", errBadRequest, err)
		}
		in = md2doc.Input{Text: string(data), Title: r.URL.Query().Get("title")}
	}

	if err := md2doc.ValidateInput(in.Text); err != nil {
		return md2doc.Input{}, err
	}
	return in, nil
}

// deliver streams art to the client and reports whether it arrived whole.
// Once the sink has started writing, failures can only be logged.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request, art md2doc.Artifact) bool {
	sink := &httpSink{w: w}
	if err := md2doc.Deliver(r.Context(), art, sink); err != nil {
		if sink.started {
			s.logger.Warn("delivery interrupted", "path", r.URL.Path, "error", err)
			return false
		}
		w.Header().Del(HistoryIDHeader)
		s.fail(w, r, err)
		return false
	}
	s.metrics.artifactBytes.Observe(float64(len(art.Data)))
	return true
}

// fail maps err to a status code and writes a problem response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "method", r.Method, "error", err)
	}
	respondError(w, status, err.Error())
}

// statusFor maps library and request errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, md2doc.ErrEmptyInput),
		errors.Is(err, history.ErrEmptyID):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, history.ErrAmbiguousID):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
