// Package server exposes a read-only HTTP API over the qapflow output
// artifacts: jurisdiction listings, extracted definitions and run
// metrics.
//
// The API never mutates pipeline state; all answers come from the JSON
// databases on disk, so the server can run beside or after a batch.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lihtc-analytics/qapflow/pipeline"
)

// Server serves the results API.
type Server struct {
	pipe   *pipeline.Pipeline
	logger *slog.Logger
}

// New creates a Server over a pipeline's output directory.
func New(pipe *pipeline.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{pipe: pipe, logger: logger}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/jurisdictions", s.handleJurisdictions)
	r.Get("/api/jurisdictions/{code}/definitions", s.handleDefinitions)
	r.Get("/api/jurisdictions/{code}/definitions/{id}/source", s.handleDefinitionSource)
	r.Get("/api/jurisdictions/{code}/metrics", s.handleMetrics)
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("results API listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleJurisdictions(w http.ResponseWriter, _ *http.Request) {
	codes, err := s.pipe.Jurisdictions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jurisdictions": codes})
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	db, err := s.pipe.LoadDatabase(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	defs := db.Definitions
	if term := strings.ToLower(r.URL.Query().Get("term")); term != "" {
		var filtered []pipeline.AnnotatedDefinition
		for _, d := range defs {
			if strings.Contains(strings.ToLower(d.Term), term) {
				filtered = append(filtered, d)
			}
		}
		defs = filtered
	}
	if defs == nil {
		defs = []pipeline.AnnotatedDefinition{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state_code":        db.StateCode,
		"processing_date":   db.ProcessingDate,
		"definitions_count": len(defs),
		"definitions":       defs,
	})
}

func (s *Server) handleDefinitionSource(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	id := chi.URLParam(r, "id")
	db, err := s.pipe.LoadDatabase(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	for _, d := range db.Definitions {
		if d.DefinitionID == id {
			writeJSON(w, http.StatusOK, map[string]any{
				"definition_id": d.DefinitionID,
				"term":          d.Term,
				"state_code":    db.StateCode,
				"pdf_page":      d.PDFPage,
				"source":        d.Verification,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("definition %s not found in %s", id, code))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	db, err := s.pipe.LoadDatabase(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state_code": db.StateCode,
		"chunks":     db.ChunksCount,
		"metrics":    db.Metrics,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
