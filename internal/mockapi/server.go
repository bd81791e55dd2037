// Package mockapi serves an offline stand-in for the REST Countries v3.1 API.
package mockapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

//go:embed countries.json
var countriesFixture []byte

// PathPrefix is the version prefix every route is served under.
const PathPrefix = "/v3.1"

// Options tunes the fixture server
type Options struct {
	// Delay is added before every response to simulate a slow upstream.
	Delay time.Duration
}

// Server is the fixture API
type Server struct {
	router    *mux.Router
	logger    *slog.Logger
	countries []map[string]any
	options   Options
}

// New creates a fixture server backed by the embedded country data
func New(options Options, logger *slog.Logger) (*Server, error) {
	var countries []map[string]any
	if err := json.Unmarshal(countriesFixture, &countries); err != nil {
		return nil, fmt.Errorf("decoding country fixture: %w", err)
	}

	s := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		countries: countries,
		options:   options,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.router.PathPrefix(PathPrefix).Subrouter()
	api.HandleFunc("/all", s.handleAll).Methods(http.MethodGet)
	api.HandleFunc("/name/{name}", s.handleName).Methods(http.MethodGet)
	api.HandleFunc("/alpha/{code}", s.handleAlpha).Methods(http.MethodGet)
	api.HandleFunc("/region/{region}", s.handleRegion).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w)
	})
	s.router.Use(s.logRequests)
}

// Handler returns the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
// ready, when non-nil, receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	boundAddr := listener.Addr().String()
	s.logger.Info("Mock API listening", "addr", boundAddr, "base_url", "http://"+boundAddr+PathPrefix)
	if ready != nil {
		ready <- boundAddr
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down mock API: %w", err)
	}
	s.logger.Info("Mock API stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.options.Delay > 0 {
			select {
			case <-time.After(s.options.Delay):
			case <-r.Context().Done():
				return
			}
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Mock API request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.countries)
}

// handleName matches common or official names, partially and ignoring case.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(mux.Vars(r)["name"])
	s.respond(w, r, s.filter(func(c map[string]any) bool {
		for _, key := range []string{"common", "official"} {
			if name, ok := nameField(c, key); ok && strings.Contains(strings.ToLower(name), query) {
				return true
			}
		}
		return false
	}))
}

func (s *Server) handleAlpha(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	s.respond(w, r, s.filter(func(c map[string]any) bool {
		return strings.EqualFold(stringField(c, "cca2"), code) || strings.EqualFold(stringField(c, "cca3"), code)
	}))
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	region := mux.Vars(r)["region"]
	s.respond(w, r, s.filter(func(c map[string]any) bool {
		return strings.EqualFold(stringField(c, "region"), region)
	}))
}

func (s *Server) filter(match func(map[string]any) bool) []map[string]any {
	out := make([]map[string]any, 0)
	for _, c := range s.countries {
		if match(c) {
			out = append(out, c)
		}
	}
	return out
}

// respond writes matches as a JSON array, applying the fields query parameter.
// No matches is a 404, as upstream does.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, matches []map[string]any) {
	if len(matches) == 0 {
		writeNotFound(w)
		return
	}

	if fields := r.URL.Query().Get("fields"); fields != "" {
		matches = project(matches, strings.Split(fields, ","))
	}

	writeJSON(w, http.StatusOK, matches)
}

// project keeps only the requested top-level keys of each country.
func project(countries []map[string]any, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(countries))
	for _, c := range countries {
		item := make(map[string]any, len(fields))
		for _, f := range fields {
			f = strings.TrimSpace(f)
			if v, ok := c[f]; ok {
				item[f] = v
			}
		}
		out = append(out, item)
	}
	return out
}

func nameField(c map[string]any, key string) (string, bool) {
	name, ok := c["name"].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := name[key].(string)
	return v, ok
}

func stringField(c map[string]any, key string) string {
	v, _ := c[key].(string)
	return v
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"status": http.StatusNotFound, "message": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
