package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"RMDB/internal/application"
	"RMDB/internal/domain"
	"RMDB/internal/platform/server/handler/health"
	"RMDB/internal/platform/server/handler/relation"
	"RMDB/internal/platform/storage"
)

type Server struct {
	httpAddr string
	engine   *chi.Mux
	log      *slog.Logger
}

func NewServer(port int, exec *application.Executor, catalog domain.CatalogRepository, eng *storage.Engine, log *slog.Logger) Server {
	srv := Server{
		engine:   chi.NewRouter(),
		httpAddr: fmt.Sprintf(":%d", port),
		log:      log,
	}
	srv.engine.Use(middleware.Logger)
	srv.registerRoutes(exec, catalog, eng)
	return srv
}

func (s *Server) Run() error {
	s.log.Info("server running", "addr", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.engine)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) registerRoutes(exec *application.Executor, catalog domain.CatalogRepository, eng *storage.Engine) {
	h := relation.NewRelationHandler(exec, catalog, eng)
	s.engine.Get("/health", health.CheckHandler)
	s.engine.Get("/relations", h.List)
	s.engine.Get("/relations/{name}", h.Print)
	s.engine.Post("/query", h.Query)
	s.engine.Get("/stats", h.Stats)
}
