// Package server exposes the catalog over HTTP: the rendered dashboard at /
// and a small JSON API for anything that wants the raw postings.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/report"
)

// Server serves the dashboard straight from the catalog, re-rendering per
// request so the page always reflects the latest run.
type Server struct {
	catalog model.Catalog
	gen     *report.Generator
	logger  *slog.Logger
	engine  *gin.Engine
}

func New(catalog model.Catalog, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		catalog: catalog,
		gen:     report.NewGenerator(),
		logger:  logger,
		engine:  engine,
	}

	engine.GET("/", s.handleDashboard)
	engine.GET("/api/postings", s.handlePostings)
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleDashboard(c *gin.Context) {
	postings, err := s.catalog.All()
	if err != nil {
		s.logger.Error("catalog read failed", "error", err)
		c.String(http.StatusInternalServerError, "catalog unavailable")
		return
	}

	html, err := s.gen.Render(postings)
	if err != nil {
		s.logger.Error("dashboard render failed", "error", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

type postingJSON struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	Location  string     `json:"location,omitempty"`
	URL       string     `json:"url"`
	Source    string     `json:"source"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`
	FirstSeen time.Time  `json:"first_seen"`
	Applied   bool       `json:"applied"`
}

func (s *Server) handlePostings(c *gin.Context) {
	postings, err := s.catalog.All()
	if err != nil {
		s.logger.Error("catalog read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}

	out := make([]postingJSON, 0, len(postings))
	for _, p := range postings {
		out = append(out, postingJSON{
			ID:        p.ID,
			Title:     p.Title,
			Company:   p.Company,
			Location:  p.Location,
			URL:       p.URL,
			Source:    p.Source,
			PostedAt:  p.PostedAt,
			FirstSeen: p.FirstSeen,
			Applied:   p.Applied,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "postings": out})
}
