package main

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/lib/validator"
	"cinehub/proj/internal/services/auth"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// extractIDParam reads the {id} path param. Title ids are UUIDs.
func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request) (id string, extracted bool) {
	parsed, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		app.Http.BadRequest(w, r, "invalid title ID")
		return "", false
	}
	return parsed.String(), true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readValidJSON decodes and validates a request body, writing the error response itself.
func (app *Application) readValidJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := app.readJSON(w, r, dst); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return false
	}
	if errs := validator.ValidateStruct(app.validator, dst); errs != nil {
		app.Http.UnprocessableEntity(w, r, errs)
		return false
	}
	return true
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

func userFromCtx(r *http.Request) *models.User {
	user, ok := r.Context().Value(CtxKeyUser).(*models.User)
	if !ok || user == nil {
		return models.AnonymousUser
	}
	return user
}

func tokenFromCtx(r *http.Request) string {
	token, _ := r.Context().Value(CtxKeyToken).(string)
	return token
}

// handleAuthError maps errors coming from the SSO collaborator to responses.
func (app *Application) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidData *auth.InvalidDataError
	switch {
	case errors.As(err, &invalidData):
		app.Http.UnprocessableEntity(w, r, invalidData.Fields())
	case errors.Is(err, auth.ErrInvalidCredentials):
		app.Http.Unauthorized(w, r, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		app.Http.Unauthorized(w, r, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserAlreadyExists):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, auth.ErrUserAlreadyActivated):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
