package main

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/services/purchases"
	"cinehub/proj/internal/services/watchlist"
	"context"
	"errors"
	"net/http"
)

func (app *Application) getWatchlist(w http.ResponseWriter, r *http.Request) {
	page := app.Services.Catalog.Watchlist(r.Context(), userFromCtx(r))
	app.Http.Ok(w, r, envelop{"watchlist": page}, "")
}

func (app *Application) dashboard(w http.ResponseWriter, r *http.Request) {
	d := app.Services.Catalog.Dashboard(r.Context(), userFromCtx(r))
	app.Http.Ok(w, r, envelop{"dashboard": d}, "")
}

type watchlistMutation func(ctx context.Context, user *models.User, titleID string) (*watchlist.Result, error)

// mutateWatchlist runs a membership change and answers with the refetched sets.
// Failures are reported as error notices the client can show as-is.
func (app *Application) mutateWatchlist(mutate watchlistMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := app.extractIDParam(w, r)
		if !ok {
			return
		}
		result, err := mutate(r.Context(), userFromCtx(r), id)
		if err != nil {
			switch {
			case errors.Is(err, watchlist.ErrLoginRequired):
				app.Http.Notice(w, r, watchlist.LoginRequiredNotice(), http.StatusUnauthorized)
			case errors.Is(err, catalog.ErrTitleNotFound):
				app.Http.Notice(w, r, models.ErrorNotice("Error", err.Error()), http.StatusNotFound)
			case errors.Is(err, watchlist.ErrAlreadyInWatchlist):
				app.Http.Notice(w, r, models.ErrorNotice("Error", err.Error()), http.StatusConflict)
			case errors.Is(err, watchlist.ErrNotInWatchlist):
				app.Http.Notice(w, r, models.ErrorNotice("Error", err.Error()), http.StatusNotFound)
			default:
				app.Http.FailureNotice(w, r, err)
			}
			return
		}
		app.Http.Ok(w, r, envelop{"watchlist": result}, result.Notice.Title)
	}
}

func (app *Application) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	app.mutateWatchlist(app.Services.Watchlist.Add)(w, r)
}

func (app *Application) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	app.mutateWatchlist(app.Services.Watchlist.Remove)(w, r)
}

func (app *Application) toggleWatchlist(w http.ResponseWriter, r *http.Request) {
	app.mutateWatchlist(app.Services.Watchlist.Toggle)(w, r)
}

func (app *Application) purchaseTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	notice, err := app.Services.Purchases.Purchase(r.Context(), userFromCtx(r), id)
	if err != nil {
		switch {
		case errors.Is(err, purchases.ErrLoginRequired):
			app.Http.Notice(w, r, purchases.LoginRequiredNotice(), http.StatusUnauthorized)
		case errors.Is(err, catalog.ErrTitleNotFound):
			app.Http.Notice(w, r, models.ErrorNotice("Error", err.Error()), http.StatusNotFound)
		case errors.Is(err, purchases.ErrNotRentable), errors.Is(err, purchases.ErrAlreadyOwned):
			app.Http.Notice(w, r, models.ErrorNotice("Error", err.Error()), http.StatusConflict)
		default:
			app.Http.FailureNotice(w, r, err)
		}
		return
	}
	app.Http.Notice(w, r, notice, http.StatusOK)
}
