// File path: internal/server/server.go

// Package server exposes a read-only preview of the compiled parts library
// so a librarian can inspect categories and rows without opening the CAD
// tool.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inolabs/partsdb/internal/common"
	"github.com/inolabs/partsdb/internal/sqlite"
)

// Server serves the compiled database over HTTP.
type Server struct {
	router chi.Router
	// dbPath is re-opened per request: the compiler atomically replaces the
	// database file, and a held connection would keep reading the old inode.
	dbPath string
}

// New constructs the preview server for the database at dbPath.
func New(dbPath string) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		dbPath: dbPath,
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/v1/libraries", s.handleLibraries)
	s.router.Get("/v1/libraries/{table}/parts", s.handleParts)
	s.router.Get("/v1/logs", s.handleLogs)
}

func (s *Server) handleLibraries(w http.ResponseWriter, r *http.Request) {
	store, err := sqlite.Open(s.dbPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer store.Close()

	categories, err := store.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"libraries": categories})
}

func (s *Server) handleParts(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	store, err := sqlite.Open(s.dbPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer store.Close()

	parts, err := store.Parts(r.Context(), table)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sqlite.ErrUnknownTable) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"table": table, "parts": parts})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
