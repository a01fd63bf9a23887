package auth

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/session"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type GetUserParams struct {
	ID       int64
	Email    string
	IsActive bool
}

type SignupData struct {
	UserID          int64
	ActivationToken string
}

type SsoProvider interface {
	Register(ctx context.Context, email, username, password string) (*SignupData, error)
	Login(ctx context.Context, email, password string) (*models.AuthTokens, error)
	GetUser(ctx context.Context, params GetUserParams) (*models.User, error)
	ActivateUser(ctx context.Context, token string) (*models.User, error)
	NewActivationToken(ctx context.Context, email string) (string, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

type SessionStore interface {
	SignIn(token string, user *models.User, expiresAt time.Time)
	SignOut(token string) bool
	Lookup(token string) (*models.User, session.State)
	Update(user *models.User) int
}

type TaskExecutor interface {
	Add(task func())
}

type AuthService struct {
	log          *slog.Logger
	Mailer       MailProvider
	sso          SsoProvider
	sessions     SessionStore
	taskExecutor TaskExecutor
	secret       []byte
}

func New(
	log *slog.Logger,
	mailer MailProvider,
	ssoProvider SsoProvider,
	sessions SessionStore,
	taskExecutor TaskExecutor,
	secret string,
) *AuthService {
	return &AuthService{
		log:          log,
		Mailer:       mailer,
		sso:          ssoProvider,
		sessions:     sessions,
		taskExecutor: taskExecutor,
		secret:       []byte(secret),
	}
}

type activationEmailData struct {
	activationURL   string
	username        string
	userID          int64
	activationToken string
}

func (a *AuthService) sendActivationEmail(email string, data activationEmailData) {
	const op = "auth.AuthService.sendActivationEmail"
	log := a.log.With("op", op, "email", email)
	log.Info("sending activation email")
	err := a.Mailer.Send(
		email,
		"user_welcome.html",
		map[string]interface{}{
			"activationURL":   template.URL(data.activationURL),
			"username":        data.username,
			"userID":          data.userID,
			"activationToken": data.activationToken,
		})
	if err != nil {
		log.Error("Error sending activation email", "errMsg", err.Error())
	}
}

func (a *AuthService) Signup(ctx context.Context, email, username, password, activationURL string) (int64, error) {
	const op = "auth.AuthService.Signup"
	log := a.log.With("op", op, "email", email)
	data, err := a.sso.Register(ctx, email, username, password)
	if err != nil {
		log.Error("Error calling Sso.Register", "errMsg", err.Error())
		return 0, err
	}
	a.taskExecutor.Add(func() {
		a.sendActivationEmail(email, activationEmailData{
			activationURL:   activationURL,
			username:        username,
			userID:          data.UserID,
			activationToken: data.ActivationToken,
		})
	})
	return data.UserID, nil
}

// Login exchanges credentials for tokens and registers the access token as a session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "email", email)
	tokens, err := a.sso.Login(ctx, email, password)
	if err != nil {
		log.Error("Error calling Sso.Login", "errMsg", err.Error())
		return nil, err
	}
	if _, err := a.Authenticate(ctx, tokens.AccessToken); err != nil {
		log.Warn("issued token was not accepted", "errMsg", err.Error())
	}
	return tokens, nil
}

func (a *AuthService) Logout(token string) error {
	const op = "auth.AuthService.Logout"
	if !a.sessions.SignOut(token) {
		a.log.Info("no active session for token", "op", op)
		return ErrInvalidToken
	}
	return nil
}

type Claims struct {
	UserID    int64
	ExpiresAt time.Time
}

// ParseToken verifies an HMAC-signed access token and extracts its user id and expiry.
func (a *AuthService) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: int64(uid), ExpiresAt: exp.Time}, nil
}

// Authenticate resolves the user behind an access token. Known sessions are served
// from the session holder; unknown tokens are verified and the user fetched from SSO.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.Authenticate"
	user, state := a.sessions.Lookup(token)
	switch state {
	case session.Active:
		return user, nil
	case session.Revoked:
		return nil, ErrInvalidToken
	}
	claims, err := a.ParseToken(token)
	if err != nil {
		return nil, err
	}
	log := a.log.With("op", op, "user_id", claims.UserID)
	user, err = a.sso.GetUser(ctx, GetUserParams{ID: claims.UserID})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("token owner not found")
			return nil, ErrInvalidToken
		}
		log.Error("Error calling Sso.GetUser", "errMsg", err.Error())
		return nil, err
	}
	a.sessions.SignIn(token, user, claims.ExpiresAt)
	return user, nil
}

func (a *AuthService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	const op = "auth.AuthService.IsAdmin"
	isAdmin, err := a.sso.IsAdmin(ctx, userID)
	if err != nil {
		a.log.Error("Error calling Sso.IsAdmin", "op", op, "user_id", userID, "errMsg", err.Error())
		return false, err
	}
	return isAdmin, nil
}

// ActivateUser activates the account and refreshes its live sessions.
func (a *AuthService) ActivateUser(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.AuthService.ActivateUser"
	user, err := a.sso.ActivateUser(ctx, token)
	if err != nil {
		a.log.Info("activation failed", "op", op, "errMsg", err.Error())
		return nil, err
	}
	a.sessions.Update(user)
	return user, nil
}

func (a *AuthService) GetNewActivationToken(ctx context.Context, email string, activationURL string) error {
	const op = "auth.AuthService.GetNewActivationToken"
	log := a.log.With("op", op, "email", email)
	user, err := a.sso.GetUser(ctx, GetUserParams{Email: email})
	if err != nil {
		return err
	}
	if user.IsActive {
		return ErrUserAlreadyActivated
	}
	newToken, err := a.sso.NewActivationToken(ctx, user.Email)
	if err != nil {
		log.Error("Error calling Sso.NewActivationToken", "errMsg", err.Error())
		return err
	}
	a.taskExecutor.Add(func() {
		a.sendActivationEmail(user.Email, activationEmailData{
			activationURL:   activationURL,
			username:        user.Username,
			userID:          user.ID,
			activationToken: newToken,
		})
	})
	return nil
}
