package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes sets up the HTTP router for the admin API. The editor shell
// is the only intended client.
func (app *adminApplication) routes() http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Component palette for the editor shell
	r.Get("/api/components", app.componentsHandler)

	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", app.listTemplatesHandler)
		r.Post("/", app.saveTemplateHandler)
		r.Post("/generate", app.generateTemplateHandler)
		r.Post("/preview", app.previewTemplateHandler)
		r.Get("/{name}", app.getTemplateHandler)
		r.Delete("/{name}", app.deleteTemplateHandler)
	})

	return r
}
