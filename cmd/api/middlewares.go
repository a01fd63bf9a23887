package main

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/auth"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 5*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.cfg.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.Http.ServerError(w, r, err, "")
			return
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.Response(
				w, r,
				envelop{"error": "rate limit exceeded"},
				"Can't process request see an error below.",
				http.StatusTooManyRequests,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const (
	CtxKeyUser  CtxKey = "user"
	CtxKeyToken CtxKey = "token"
)

// Authenticate resolves the bearer token, if any. Requests without one continue as anonymous.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		user := models.AnonymousUser
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			const bearerLength = len("Bearer ")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < bearerLength+1 {
				app.log.Warn("Invalid auth header")
				app.Http.BadRequest(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			authenticated, err := app.Services.Auth.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					app.Http.Unauthorized(w, r, "Invalid or expired token")
					return
				}
				app.Http.ServerError(w, r, err, "")
				return
			}
			user = authenticated
			ctx = context.WithValue(ctx, CtxKeyToken, token)
		}
		r = r.WithContext(context.WithValue(ctx, CtxKeyUser, user))
		next.ServeHTTP(w, r)
	})
}

var loginRequiredNotice = models.ErrorNotice("Login required", "Please log in to continue")

// loginRequired rejects anonymous callers with the given notice before any store request is made.
func (app *Application) loginRequired(notice *models.Notice) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userFromCtx(r).IsAnonymous() {
				app.Http.Notice(w, r, notice, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return app.loginRequired(loginRequiredNotice)(next)
}

func (app *Application) requireActivatedUser(next http.Handler) http.Handler {
	return app.requireAuthenticatedUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFromCtx(r).IsActive {
			app.Http.Unauthorized(w, r, "Your account must be activated to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return app.requireActivatedUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, err := app.Services.Auth.IsAdmin(r.Context(), userFromCtx(r).ID)
		if err != nil {
			app.Http.ServerError(w, r, err, "")
			return
		}
		if !isAdmin {
			app.Http.Forbidden(w, r, "Only administrators can access this resource")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
