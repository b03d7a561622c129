// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/history"
	"github.com/rs/cors"
)

// Timeouts applied to every connection.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// DefaultMaxBodyBytes caps request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// HistoryIDHeader carries the ID of the record created by a conversion.
const HistoryIDHeader = "X-History-ID"

// Options configures a Server. Converter is required; a nil Store
// disables the history endpoints.
type Options struct {
	Converter    *md2doc.Converter
	Store        *history.Store
	Logger       *slog.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
	Workers      int // Concurrent conversions, 0 = ResolveWorkers default
	Now          func() time.Time
	Version      string
}

// Server serves conversions over HTTP.
type Server struct {
	conv    *md2doc.Converter
	store   *history.Store
	logger  *slog.Logger
	origins []string
	maxBody int64
	limiter *limiter
	metrics *metrics
	now     func() time.Time
	version string
}

// New creates a Server. Panics if opts.Converter is nil.
func New(opts Options) *Server {
	if opts.Converter == nil {
		panic("server: nil converter")
	}
	s := &Server{
		conv:    opts.Converter,
		store:   opts.Store,
		logger:  opts.Logger,
		origins: opts.CORSOrigins,
		maxBody: opts.MaxBodyBytes,
		limiter: newLimiter(ResolveWorkers(opts.Workers)),
		metrics: newMetrics(),
		now:     opts.Now,
		version: opts.Version,
	}
	s.limiter.inFlight = s.metrics.inFlight
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the routed handler with middleware applied.
// Order: CORS, recovery, request log, routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "POST /convert", s.limiter.limit(s.handleConvert))
	s.route(mux, "POST /preview", s.limiter.limit(s.handlePreview))
	s.route(mux, "GET /history", s.handleHistoryList)
	s.route(mux, "GET /history/{id}/download", s.limiter.limit(s.handleHistoryDownload))
	s.route(mux, "GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())

	var handler http.Handler = mux
	handler = requestLog(s.logger)(handler)
	handler = recovery(s.logger)(handler)

	if len(s.origins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
			ExposedHeaders: []string{"Content-Disposition", HistoryIDHeader},
		}).Handler(handler)
	}

	return handler
}

// route registers h under pattern with request metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.metrics.instrument(pattern, h))
}

// ListenAndServe binds addr and serves until ctx is canceled, then shuts
// down gracefully. The bound address is reported through ready, if set,
// before the first request is accepted.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	if ready != nil {
		ready(ln.Addr())
	}
	s.logger.Info("server starting", "addr", ln.Addr().String(), "version", s.version, "workers", s.limiter.size())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// httpSink streams an artifact as a download.
type httpSink struct {
	w       http.ResponseWriter
	started bool
}

func (s *httpSink) Accept(_ context.Context, h *md2doc.Handle) error {
	header := s.w.Header()
	header.Set("Content-Type", h.ContentType())
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.Filename()}))
	header.Set("Content-Length", strconv.Itoa(h.Size()))
	s.w.WriteHeader(http.StatusOK)
	s.started = true

	_, err := h.WriteTo(s.w)
	return err
}
