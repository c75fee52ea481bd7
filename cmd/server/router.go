package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/elvispreakerebi/jotta-backend/internal/api"
	apiMiddleware "github.com/elvispreakerebi/jotta-backend/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth.TokenLifetimeMinutes,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	videoHandler := api.NewVideoHandler(app.videoJobService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/videos", videoHandler.SubmitVideo)
			r.Get("/videos", videoHandler.ListVideoJobs)
			r.Get("/videos/search", videoHandler.SearchVideoJobs)
			r.Get("/videos/{videoID}", videoHandler.GetVideoJob)
			r.Delete("/videos/{videoID}", videoHandler.DeleteVideoJob)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
