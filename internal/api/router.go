package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "after3am/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions tune the routes that depend on deployment settings.
type RouterOptions struct {
	// StaticDir holds the built front end. Empty disables the file server.
	StaticDir string
	// EnforceGate rejects chat requests outside the gate hour.
	EnforceGate bool
}

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(chatHandler *ChatHandler, metaHandler *MetaHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})

	// The chat stream has no timeout: it stays open while the model writes.
	r.Group(func(r chi.Router) {
		if opts.EnforceGate {
			r.Use(metaHandler.RequireOpenGate)
		}
		r.Post("/api/chat", chatHandler.HandleChat)
	})

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/modes", metaHandler.HandleListModes)
		r.Get("/modes/{modeID}", metaHandler.HandleGetMode)
		r.Get("/gate", metaHandler.HandleGateStatus)
	})

	// --- Frontend File Server ---
	if opts.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/*", fileServer)
	}

	return r
}
