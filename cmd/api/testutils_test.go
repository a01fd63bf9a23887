package main

import (
	"bytes"
	"cinehub/proj/internal/config"
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/lib/logger"
	"cinehub/proj/internal/services"
	"cinehub/proj/internal/services/auth"
	"cinehub/proj/internal/session"
	"cinehub/proj/internal/storage/memory"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSso struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func (f *fakeSso) Register(_ context.Context, email, username, _ string) (*auth.SignupData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, auth.ErrUserAlreadyExists
		}
	}
	id := int64(len(f.users) + 1)
	f.users[id] = &models.User{ID: id, Email: email, Username: username}
	return &auth.SignupData{UserID: id, ActivationToken: "ACTIVATE"}, nil
}

func (f *fakeSso) Login(_ context.Context, email, password string) (*models.AuthTokens, error) {
	if password != "correct-horse" {
		return nil, auth.ErrInvalidCredentials
	}
	return &models.AuthTokens{AccessToken: "access-" + email, RefreshToken: "refresh"}, nil
}

func (f *fakeSso) GetUser(_ context.Context, params auth.GetUserParams) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if (params.ID != 0 && u.ID == params.ID) || (params.Email != "" && u.Email == params.Email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeSso) ActivateUser(_ context.Context, token string) (*models.User, error) {
	if token != "ACTIVATE" {
		return nil, auth.NewInvalidDataError(`{"token":"invalid or expired activation token"}`)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[1]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if u.IsActive {
		return nil, auth.ErrUserAlreadyActivated
	}
	u.IsActive = true
	copied := *u
	return &copied, nil
}

func (f *fakeSso) NewActivationToken(context.Context, string) (string, error) {
	return "NEW", nil
}

func (f *fakeSso) IsAdmin(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return false, auth.ErrUserNotFound
	}
	return u.Role == "admin", nil
}

type fakeMailer struct {
	mu         sync.Mutex
	recipients []string
}

func (m *fakeMailer) Send(recipient string, _ string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipients = append(m.recipients, recipient)
	return nil
}

type syncExecutor struct{}

func (syncExecutor) Add(task func()) { task() }

type testDeps struct {
	store    *memory.Storage
	sso      *fakeSso
	mailer   *fakeMailer
	sessions *session.Holder
}

func testConfig() *config.Config {
	return &config.Config{
		AppSecret: "test-secret",
		DB:        config.DB{Driver: config.DriverMemory},
		Catalog: config.Catalog{
			TopLimit:     100,
			SeriesGenres: []string{"drama", "thriller", "mystery", "comedy"},
			FetchTimeout: time.Second,
		},
	}
}

func NewTestApplication(cfg *config.Config, t *testing.T) (*Application, *testDeps) {
	t.Helper()
	return newTestApplicationWithStores(cfg, t, nil)
}

// newTestApplicationWithStores lets a test swap individual stores before the services are built.
func newTestApplicationWithStores(
	cfg *config.Config,
	t *testing.T,
	wrap func(services.Stores) services.Stores,
) (*Application, *testDeps) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	log := logger.Discard()
	deps := &testDeps{
		store:    memory.New(),
		sso:      &fakeSso{users: map[int64]*models.User{}},
		mailer:   &fakeMailer{},
		sessions: session.New(log),
	}
	t.Cleanup(deps.sessions.Close)
	stores := services.MemoryStores(deps.store)
	if wrap != nil {
		stores = wrap(stores)
	}
	svc := services.New(log, cfg, stores, services.Deps{
		Mailer:       deps.mailer,
		Sso:          deps.sso,
		Sessions:     deps.sessions,
		TaskExecutor: syncExecutor{},
	})
	return NewApplication(cfg, log, svc), deps
}

// signIn registers a user with the fake SSO and a live session, returning its bearer token.
func (d *testDeps) signIn(user *models.User) string {
	d.sso.mu.Lock()
	d.sso.users[user.ID] = user
	d.sso.mu.Unlock()
	token := "token-" + user.Email
	d.sessions.SignIn(token, user, time.Now().Add(time.Hour))
	return token
}

func (d *testDeps) addTitle(t *testing.T, title models.Title) models.Title {
	t.Helper()
	created, err := d.store.Title.Insert(context.Background(), &title)
	require.NoError(t, err)
	return *created
}

type testResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func (r testResponse) decode(t *testing.T, key string, dst any) {
	t.Helper()
	raw, ok := r.Data[key]
	require.True(t, ok, "response has no %q key", key)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func doRequest(t *testing.T, handler http.Handler, method, target, token string, body any) (int, testResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var resp testResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}
