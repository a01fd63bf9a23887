package main

import (
	"cinehub/proj/internal/domain/models"
	"net/http"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	userID, err := app.Services.Auth.Signup(r.Context(), req.Email, req.Username, req.Password, activationURL)
	if err != nil {
		app.handleAuthError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user_id": userID}, "Check your email to confirm the account")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	tokens, err := app.Services.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		app.handleAuthError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"tokens": tokens}, "")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.Services.Auth.Logout(tokenFromCtx(r)); err != nil {
		app.handleAuthError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "Logged out")
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	IsActive bool   `json:"is_active"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
}

func (app *Application) me(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, envelop{"user": newUserResponse(userFromCtx(r))}, "")
}

type activationRequest struct {
	Token string `json:"token" validate:"required"`
}

func (app *Application) activateAccount(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	user, err := app.Services.Auth.ActivateUser(r.Context(), req.Token)
	if err != nil {
		app.handleAuthError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": newUserResponse(user)}, "Account activated")
}

type newActivationTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (app *Application) getNewActivationToken(w http.ResponseWriter, r *http.Request) {
	var req newActivationTokenRequest
	if !app.readValidJSON(w, r, &req) {
		return
	}
	err := app.Services.Auth.GetNewActivationToken(r.Context(), req.Email, activationURL)
	if err != nil {
		app.handleAuthError(w, r, err)
		return
	}
	app.Http.Ok(w, r, nil, "New activation token was sent to your email")
}
