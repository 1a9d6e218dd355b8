// Package web exposes a small read-only HTTP API over the generated day
// summaries, for the dashboard layer that visualizes them.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"agendacal/internal/config"
	appLog "agendacal/internal/log"
)

// Server serves /health, /api/days and /api/day.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// In-memory cache for the /api/days listing to avoid rescanning the
	// summary directory on every request.
	daysMu    sync.RWMutex
	daysCache *daysCache
}

type daysCache struct {
	dates     []string
	updatedAt time.Time
}

var dateParam = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// StartServer starts an HTTP server bound to cfg.Listen and shuts it down
// when ctx is canceled.
func StartServer(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/days", s.handleDays)
	s.mux.HandleFunc("/api/day", s.handleDay)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDays lists the dates that have a generated summary, newest first.
//
// GET /api/days
func (s *Server) handleDays(w http.ResponseWriter, _ *http.Request) {
	const daysCacheTTL = 30 * time.Second
	now := time.Now()

	s.daysMu.RLock()
	dc := s.daysCache
	s.daysMu.RUnlock()
	if dc != nil && now.Sub(dc.updatedAt) < daysCacheTTL {
		writeJSON(w, http.StatusOK, daysResponse{Dates: dc.dates})
		return
	}

	entries, err := os.ReadDir(s.cfg.SummaryDir())
	if err != nil && !os.IsNotExist(err) {
		appLog.Error("summary dir scan failed", err, "dir", s.cfg.SummaryDir())
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if dateParam.MatchString(date) {
			dates = append(dates, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	s.daysMu.Lock()
	s.daysCache = &daysCache{dates: dates, updatedAt: time.Now()}
	s.daysMu.Unlock()

	writeJSON(w, http.StatusOK, daysResponse{Dates: dates})
}

type daysResponse struct {
	Dates []string `json:"dates"`
}

// handleDay serves one day's summary document.
//
// GET /api/day?date=2024-03-05
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !dateParam.MatchString(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	path := filepath.Join(s.cfg.SummaryDir(), date+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "no summary for "+date)
			return
		}
		appLog.Error("summary read failed", err, "path", path)
		writeError(w, http.StatusInternalServerError, "failed to read summary")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// credentials are treated as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="AgendaCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
