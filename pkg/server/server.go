// Package server renders single tokens over HTTP.
//
//	GET /healthz
//	GET /tokens/{id}?size=480&transparent=true
//
// Token images go through the same extractor, classifier and compositor as
// the batch pipeline. Every response carries an X-Request-ID header.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

// RequestIDHeader is set on every response.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxImageSize bounds the size query parameter. A 4096px NRGBA canvas
// is 64 MiB.
const DefaultMaxImageSize = 4096

// Config holds the server's collaborators.
type Config struct {
	Addr     string
	Source   pipeline.Source
	Renderer *artwork.Renderer
	Logger   *log.Logger

	// MaxImageSize is the largest width a client may request. Zero means
	// DefaultMaxImageSize.
	MaxImageSize int
}

// Server is the preview HTTP server. It is safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	config Config
	router *chi.Mux
	server *http.Server
}

// New creates a server. Nil renderer and logger get defaults.
func New(config Config) *Server {
	if config.Renderer == nil {
		config.Renderer = artwork.NewRenderer()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.MaxImageSize <= 0 {
		config.MaxImageSize = DefaultMaxImageSize
	}
	s := &Server{config: config, router: chi.NewRouter()}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/tokens/{id}", s.handleToken)
}

// Handler returns the HTTP handler for testing purposes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.server
	s.mu.Unlock()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.config.Logger.Info("serving", "addr", s.config.Addr)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code      errors.Code `json:"code,omitempty"`
	Error     string      `json:"error"`
	RequestID string      `json:"request_id"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := parseRequest(id, r, s.config.MaxImageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.config.Source.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.config.Renderer.Render(r.Context(), doc, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := res.Outputs[0]
	w.Header().Set("Content-Type", contentType(out.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

func parseRequest(id string, r *http.Request, maxSize int) (artwork.Request, error) {
	if err := errors.ValidateTokenID(id); err != nil {
		return artwork.Request{}, err
	}
	req := artwork.Request{TokenID: id, ImageSize: pipeline.DefaultImageSize}

	q := r.URL.Query()
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "size must be an integer")
		}
		req.ImageSize = size
	}
	if err := errors.ValidateImageSize(req.ImageSize); err != nil {
		return req, err
	}
	if req.ImageSize > maxSize {
		return req, errors.New(errors.ErrCodeInvalidInput, "image size must be <= %d, got %d", maxSize, req.ImageSize)
	}
	if v := q.Get("transparent"); v != "" {
		t, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "transparent must be a boolean")
		}
		req.Transparent = t
	}
	return req, nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupportedTransparentUnique:
		return http.StatusConflict
	case errors.ErrCodeMalformedDocument, errors.ErrCodePreconditionViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	reqID := w.Header().Get(RequestIDHeader)
	if status >= 500 {
		s.config.Logger.Error("request failed", "path", r.URL.Path, "request_id", reqID, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Code:      errors.GetCode(err),
		Error:     errors.UserMessage(err),
		RequestID: reqID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "jpeg":
		return "image/jpeg"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// requestID propagates a caller-supplied X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.config.Logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", w.Header().Get(RequestIDHeader))
	})
}
