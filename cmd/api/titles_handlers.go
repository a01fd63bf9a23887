package main

import (
	"cinehub/proj/internal/domain/fields"
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/lib/validator"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/services/titles"
	"context"
	"errors"
	"net/http"
)

type titleFilterParams struct {
	Query     string   `schema:"q" validate:"max=200"`
	Genre     string   `schema:"genre" validate:"max=100"`
	Decade    string   `schema:"decade" validate:"decade"`
	MinRating *float64 `schema:"min_rating" validate:"omitempty,gte=0,lte=10"`
}

func (app *Application) readTitleFilters(w http.ResponseWriter, r *http.Request) (filters.Predicates, bool) {
	var params titleFilterParams
	if err := app.decoder.Decode(&params, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return filters.Predicates{}, false
	}
	if errs := validator.ValidateStruct(app.validator, &params); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return filters.Predicates{}, false
	}
	predicates, err := filters.NewPredicates(params.Query, params.Genre, params.Decade, params.MinRating)
	if err != nil {
		app.Http.UnprocessableEntity(w, r, map[string]string{"decade": err.Error()})
		return filters.Predicates{}, false
	}
	return predicates, true
}

type pageFunc func(ctx context.Context, user *models.User, p filters.Predicates) catalog.Page

func (app *Application) listPage(page pageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		predicates, ok := app.readTitleFilters(w, r)
		if !ok {
			return
		}
		app.Http.Ok(w, r, envelop{"page": page(r.Context(), userFromCtx(r), predicates)}, "")
	}
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	app.listPage(app.Services.Catalog.Catalog)(w, r)
}

func (app *Application) topTitles(w http.ResponseWriter, r *http.Request) {
	app.listPage(app.Services.Catalog.TopTitles)(w, r)
}

func (app *Application) topSeries(w http.ResponseWriter, r *http.Request) {
	app.listPage(app.Services.Catalog.TopSeries)(w, r)
}

func (app *Application) titleView(w http.ResponseWriter, r *http.Request) (*catalog.TitleDetail, bool) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return nil, false
	}
	view, err := app.Services.Catalog.Title(r.Context(), userFromCtx(r), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return nil, false
		}
		app.Http.ServerError(w, r, err, "")
		return nil, false
	}
	return view, true
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	view, ok := app.titleView(w, r)
	if !ok {
		return
	}
	app.Http.Ok(w, r, envelop{"title": view}, "")
}

func (app *Application) getTrailer(w http.ResponseWriter, r *http.Request) {
	view, ok := app.titleView(w, r)
	if !ok {
		return
	}
	if view.TrailerURL == "" {
		app.Http.NotFound(w, r, "trailer is not available for this title")
		return
	}
	app.Http.Ok(w, r, envelop{"trailer_url": view.TrailerURL, "embed_url": view.EmbedURL}, "")
}

type createTitleRequest struct {
	Name               string          `json:"name" validate:"required,max=500"`
	Synopsis           string          `json:"synopsis" validate:"max=5000"`
	ReleaseYear        int             `json:"release_year" validate:"required,gte=1888,lte=2100"`
	Genre              string          `json:"genre" validate:"max=100"`
	Country            string          `json:"country" validate:"max=100"`
	Director           string          `json:"director" validate:"max=200"`
	CastMembers        []string        `json:"cast_members" validate:"omitempty,dive,required"`
	Awards             string          `json:"awards" validate:"max=1000"`
	PosterURL          string          `json:"poster_url" validate:"omitempty,url"`
	TrailerURL         string          `json:"trailer_url" validate:"omitempty,url"`
	Price              float64         `json:"price" validate:"gte=0"`
	IsPremium          bool            `json:"is_premium"`
	Rating             *float64        `json:"rating" validate:"omitempty,gte=0,lte=10"`
	Runtime            *fields.Runtime `json:"runtime_minutes" validate:"omitempty,gt=0"`
	StreamingPlatforms []string        `json:"streaming_platforms" validate:"omitempty,unique,dive,required"`
}

func (req *createTitleRequest) toModel() *models.Title {
	return &models.Title{
		Name:               req.Name,
		Synopsis:           req.Synopsis,
		ReleaseYear:        req.ReleaseYear,
		Genre:              req.Genre,
		Country:            req.Country,
		Director:           req.Director,
		CastMembers:        req.CastMembers,
		Awards:             req.Awards,
		PosterURL:          req.PosterURL,
		TrailerURL:         req.TrailerURL,
		Price:              req.Price,
		IsPremium:          req.IsPremium,
		Rating:             req.Rating,
		Runtime:            req.Runtime,
		StreamingPlatforms: req.StreamingPlatforms,
	}
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	var req createTitleRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	title, err := app.Services.Titles.Create(r.Context(), req.toModel())
	if err != nil {
		if errors.Is(err, titles.ErrTitleAlreadyExists) {
			app.Http.Conflict(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"title": title}, "")
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r)
	if !ok {
		return
	}
	if err := app.Services.Titles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, nil, "Title successfully deleted")
}
