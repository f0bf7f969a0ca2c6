package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/john/themer/internal/app"
	"github.com/john/themer/internal/theme"
)

const (
	shutdownTimeout = 5 * time.Second
	maxRequestBody  = 64 << 10
)

// ThemeResponse describes the active theme
type ThemeResponse struct {
	Theme       string        `json:"theme"`
	DisplayName string        `json:"display_name"`
	State       string        `json:"state"`
	Colors      theme.Palette `json:"colors"`
}

// ThemeListResponse lists the catalog
type ThemeListResponse struct {
	Active string          `json:"active"`
	Themes []theme.Summary `json:"themes"`
}

// SelectRequest selects a theme by id
type SelectRequest struct {
	Theme string `json:"theme"`
}

// ContrastWarning flags a low-contrast role pair of a custom palette
type ContrastWarning struct {
	Foreground theme.Role `json:"foreground"`
	Background theme.Role `json:"background"`
	Ratio      float64    `json:"ratio"`
}

// CustomResponse is returned after building a custom theme
type CustomResponse struct {
	ThemeResponse
	Warnings []ContrastWarning `json:"warnings"`
}

// ProblemDetail is an RFC 7807 error body
type ProblemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Server exposes the engine of one App over HTTP
type Server struct {
	app    *app.App
	server *http.Server
	logger *log.Logger
}

// New creates a server for a listening on addr
func New(a *app.App, addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	s := &Server{app: a, logger: logger}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.app.Metrics.Handler())
	mux.HandleFunc("GET /theme.css", s.handleStylesheet)

	mux.HandleFunc("GET /api/themes", s.handleListThemes)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("POST /api/theme", s.handleSelectTheme)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("POST /api/theme/custom", s.handleBuildCustom)

	return mux
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving theme engine", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.app.Document.Stylesheet()))
}

func (s *Server) handleListThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ThemeListResponse{
		Active: s.app.Session.ActiveID(),
		Themes: s.app.Catalog.List(),
	})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.themeResponse(s.app.Current()))
}

func (s *Server) handleSelectTheme(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := strings.TrimSpace(req.Theme)
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "theme is required")
		return
	}
	if !s.app.Catalog.Has(id) {
		writeProblem(w, http.StatusNotFound, "theme not found: "+id)
		return
	}

	def, _ := s.app.Select(id)
	writeJSON(w, http.StatusOK, s.themeResponse(def))
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.themeResponse(s.app.Toggle()))
}

func (s *Server) handleBuildCustom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Primary    string `json:"primary"`
		Background string `json:"background"`
		Surface    string `json:"surface"`
		Text       string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seeds, err := theme.ParseSeeds(req.Primary, req.Background, req.Surface, req.Text)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.app.BuildCustom(seeds)
	if err != nil {
		s.logger.Error("Failed to build custom theme", "error", err)
		writeProblem(w, http.StatusInternalServerError, "failed to build custom theme")
		return
	}

	resp := CustomResponse{
		ThemeResponse: s.themeResponse(s.app.Current()),
		Warnings:      make([]ContrastWarning, 0, len(result.Warnings)),
	}
	for _, cw := range result.Warnings {
		resp.Warnings = append(resp.Warnings, ContrastWarning{
			Foreground: cw.Foreground,
			Background: cw.Background,
			Ratio:      cw.Ratio,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) themeResponse(def theme.Definition) ThemeResponse {
	return ThemeResponse{
		Theme:       def.ID,
		DisplayName: def.DisplayName,
		State:       s.app.Session.State().String(),
		Colors:      def.Colors,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes an RFC 7807 problem response
func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
