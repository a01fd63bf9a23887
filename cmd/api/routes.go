package main

import (
	"cinehub/proj/internal/services/purchases"
	"cinehub/proj/internal/services/watchlist"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const activationURL = "PUT '/api/v1/accounts/activation'"

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.Response(w, r, nil, "", http.StatusMethodNotAllowed)
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/titles", func(r chi.Router) {
			r.Get("/", app.listTitles)
			r.Get("/top", app.topTitles)
			r.With(app.requireAdmin).Post("/", app.createTitle)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.getTitle)
				r.Get("/trailer", app.getTrailer)
				r.With(app.requireAdmin).Delete("/", app.deleteTitle)
				r.With(app.loginRequired(purchases.LoginRequiredNotice())).Post("/purchase", app.purchaseTitle)
			})
		})
		r.Get("/series/top", app.topSeries)
		r.Route("/watchlist", func(r chi.Router) {
			r.Use(app.loginRequired(watchlist.LoginRequiredNotice()))
			r.Get("/", app.getWatchlist)
			r.Put("/{id}", app.addToWatchlist)
			r.Delete("/{id}", app.removeFromWatchlist)
			r.Post("/{id}/toggle", app.toggleWatchlist)
		})
		r.With(app.requireAuthenticatedUser).Get("/dashboard", app.dashboard)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/signup", app.signup)
			r.Post("/login", app.login)
			r.With(app.requireAuthenticatedUser).Post("/logout", app.logout)
			r.With(app.requireAuthenticatedUser).Get("/me", app.me)
			r.Put("/activation", app.activateAccount)
			r.Post("/activation/new-token", app.getNewActivationToken)
		})
	})
	return router
}
