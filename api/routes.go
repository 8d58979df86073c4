package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inficom-solutions/portfolio-backend/models"
)

type middleware = func(http.Handler) http.Handler

// setupRoutes registers the public read API, the authenticated admin API and
// the auxiliary endpoints.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, upload uploadMiddleware) {
	r.NotFound(handlers.healthHandler.notFound())
	r.MethodNotAllowed(handlers.healthHandler.methodNotAllowed())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.healthHandler.health())

		r.Post("/auth/login", handlers.authHandler.login())
		r.With(authMiddleware.authenticate).Get("/auth/me", handlers.authHandler.me())

		r.Post("/contact", handlers.contactHandler.submit())

		mountResource(r, "/projects", handlers.projectHandler, authMiddleware.authenticate, upload.accept)
		mountResource(r, "/testimonials", handlers.testimonialHandler, authMiddleware.authenticate, upload.accept)
		mountResource(r, "/services", handlers.serviceHandler, authMiddleware.authenticate, upload.accept)
		mountResource(r, "/features", handlers.featureHandler, authMiddleware.authenticate, upload.accept)
	})
}

// mountResource registers the CRUD routes of one content type. Reads are
// public; writes pass authentication first and then the upload check.
func mountResource[D models.Document](r chi.Router, path string, h resourceHandler[D], authenticate, upload middleware) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.list())
		r.Get("/{id}", h.get())

		r.Group(func(r chi.Router) {
			r.Use(authenticate, upload)
			r.Post("/", h.create())
			r.Put("/{id}", h.update())
			r.Delete("/{id}", h.remove())
		})
	})
}

// setupStaticRoutes serves locally stored images read-only.
func setupStaticRoutes(r chi.Router, uploadDir string) {
	if uploadDir == "" {
		return
	}
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fileServer.ServeHTTP(w, r)
	})
}
