// Package stub serves canned HTTP responses so API steps can run against a
// predictable backend.
package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// Received is a request the stub answered.
type Received struct {
	RequestID string
	Method    string
	Path      string
	Query     string
	Header    http.Header
	Body      string
}

// Server is a chi-routed stub HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server

	apiKeys []string
	limiter *limiter

	mu       sync.Mutex
	received []Received
}

// NewServer builds a server answering routes.
func NewServer(routes []Route, opts ...Option) *Server {
	s := &Server{router: chi.NewRouter()}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupAdmin(routes)
	s.setupRoutes(routes)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.record)
	s.router.Use(s.apiKeyAuth)
	s.router.Use(s.limit)
}

func (s *Server) setupRoutes(routes []Route) {
	for _, rt := range routes {
		s.router.Method(rt.Method, rt.Path, respond(rt))
	}
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no stub for %s %s", r.Method, r.URL.Path))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("no stub for %s %s", r.Method, r.URL.Path))
	})
}

// record keeps a copy of every request for later verification.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAdmin(r) {
			next.ServeHTTP(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.received = append(s.received, Received{
			RequestID: middleware.GetReqID(r.Context()),
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Header:    r.Header.Clone(),
			Body:      string(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func respond(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.Delay > 0 {
			select {
			case <-time.After(rt.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for k, v := range rt.Headers {
			w.Header().Set(k, v)
		}

		if rt.JSON != nil {
			if w.Header().Get("Content-Type") == "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(rt.Status)
			if err := json.NewEncoder(w).Encode(rt.JSON); err != nil {
				logging.Error(r.Context(), "json encode error", err)
			}
			return
		}

		w.WriteHeader(rt.Status)
		io.WriteString(w, rt.Body)
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// Received returns the requests answered so far, oldest first.
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Received(nil), s.received...)
}

// Reset forgets recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	s.received = nil
	s.mu.Unlock()
}

// Handler returns the router, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logging.Info(context.Background(), "Starting stub server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
