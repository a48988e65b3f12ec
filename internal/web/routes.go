package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkadlec/photogate/internal/web/handlers"
)

func (s *Server) setupRoutes(images *handlers.ImagesHandler, uploadDir string) {
	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/images", images.Upload)
		r.Get("/images", images.List)
		r.Get("/images/{id}", images.Get)
		r.Delete("/images/{id}", images.Delete)
	})

	// Objects on the fallback tier are served straight from disk.
	fileServer := http.FileServer(http.Dir(uploadDir))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
}
