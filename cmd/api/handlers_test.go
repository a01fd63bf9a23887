package main

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services"
	"cinehub/proj/internal/services/auth"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type pageBody struct {
	Titles []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		InWatchlist bool   `json:"in_watchlist"`
		IsPurchased bool   `json:"is_purchased"`
		CanPurchase bool   `json:"can_purchase"`
		EmbedURL    string `json:"embed_url"`
		Rank        *struct {
			Position int    `json:"position"`
			Label    string `json:"label"`
			Podium   bool   `json:"podium"`
		} `json:"rank"`
	} `json:"titles"`
	Genres  []string `json:"genres"`
	Decades []int    `json:"decades"`
	Stats   struct {
		Count         int     `json:"count"`
		Visible       int     `json:"visible"`
		AverageRating float64 `json:"average_rating"`
	} `json:"stats"`
	Degraded bool `json:"degraded"`
}

func (p pageBody) names() []string {
	out := make([]string, 0, len(p.Titles))
	for _, t := range p.Titles {
		out = append(out, t.Name)
	}
	return out
}

type noticeBody struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func seedCatalog(t *testing.T, deps *testDeps) map[string]models.Title {
	t.Helper()
	titles := map[string]models.Title{}
	for _, title := range []models.Title{
		{Name: "Nope", Synopsis: "Something in orbit", Genre: "Horror", ReleaseYear: 2022, Rating: ptr(6.8), IsPremium: true, Price: 3.99},
		{Name: "Heat", Synopsis: "A heist in LA", Genre: "Action", ReleaseYear: 1995, Rating: ptr(8.3), TrailerURL: "https://www.youtube.com/watch?v=abc123"},
		{Name: "Hype", Genre: "Action", ReleaseYear: 2021},
		{Name: "Dark", Synopsis: "Time travel", Genre: "Mystery Drama", ReleaseYear: 2017, Rating: ptr(8.7)},
	} {
		titles[title.Name] = deps.addTitle(t, title)
	}
	return titles
}

func TestHealthcheck(t *testing.T) {
	app, _ := NewTestApplication(nil, t)
	status, _ := doRequest(t, app.routes(), http.MethodGet, "/api/v1/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestListTitles(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	seedCatalog(t, deps)
	routes := app.routes()

	status, resp := doRequest(t, routes, http.MethodGet, "/api/v1/titles", "", nil)
	require.Equal(t, http.StatusOK, status)
	var page pageBody
	resp.decode(t, "page", &page)
	assert.Equal(t, []string{"Nope", "Hype", "Dark", "Heat"}, page.names())
	assert.Equal(t, []int{2020, 2010, 1990}, page.Decades)
	assert.Equal(t, 4, page.Stats.Count)
	assert.False(t, page.Degraded)

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/titles?q=he&genre=all&decade=all", "", nil)
	require.Equal(t, http.StatusOK, status)
	page = pageBody{}
	resp.decode(t, "page", &page)
	assert.Equal(t, []string{"Heat"}, page.names())
	assert.Equal(t, 4, page.Stats.Count)
	assert.Equal(t, 1, page.Stats.Visible)
	assert.Contains(t, page.Titles[0].EmbedURL, "abc123")

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/titles?genre=action&decade=2020", "", nil)
	require.Equal(t, http.StatusOK, status)
	page = pageBody{}
	resp.decode(t, "page", &page)
	assert.Equal(t, []string{"Hype"}, page.names())
}

func TestListTitlesValidation(t *testing.T) {
	app, _ := NewTestApplication(nil, t)
	routes := app.routes()

	status, resp := doRequest(t, routes, http.MethodGet, "/api/v1/titles?decade=1994", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var errs map[string]string
	resp.decode(t, "errors", &errs)
	assert.Contains(t, errs, "decade")

	status, _ = doRequest(t, routes, http.MethodGet, "/api/v1/titles?min_rating=11", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestTopTitlesAndSeries(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	seedCatalog(t, deps)
	routes := app.routes()

	status, resp := doRequest(t, routes, http.MethodGet, "/api/v1/titles/top", "", nil)
	require.Equal(t, http.StatusOK, status)
	var page pageBody
	resp.decode(t, "page", &page)
	assert.Equal(t, []string{"Dark", "Heat", "Nope"}, page.names())
	require.NotNil(t, page.Titles[0].Rank)
	assert.Equal(t, "1st", page.Titles[0].Rank.Label)
	assert.True(t, page.Titles[2].Rank.Podium)

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/series/top", "", nil)
	require.Equal(t, http.StatusOK, status)
	page = pageBody{}
	resp.decode(t, "page", &page)
	assert.Equal(t, []string{"Dark"}, page.names())
}

func TestGetTitleAndTrailer(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	titles := seedCatalog(t, deps)
	routes := app.routes()

	status, _ := doRequest(t, routes, http.MethodGet, "/api/v1/titles/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doRequest(t, routes, http.MethodGet, "/api/v1/titles/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp := doRequest(t, routes, http.MethodGet, "/api/v1/titles/"+titles["Nope"].ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var view struct {
		Name        string `json:"name"`
		CanPurchase bool   `json:"can_purchase"`
		Degraded    *bool  `json:"degraded"`
	}
	resp.decode(t, "title", &view)
	assert.Equal(t, "Nope", view.Name)
	assert.True(t, view.CanPurchase)
	require.NotNil(t, view.Degraded)
	assert.False(t, *view.Degraded)

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/titles/"+titles["Heat"].ID+"/trailer", "", nil)
	require.Equal(t, http.StatusOK, status)
	var embed string
	resp.decode(t, "embed_url", &embed)
	assert.Equal(t, "https://www.youtube.com/embed/abc123", embed)

	status, _ = doRequest(t, routes, http.MethodGet, "/api/v1/titles/"+titles["Hype"].ID+"/trailer", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

type watchlistResultBody struct {
	TitleID    string `json:"title_id"`
	State      string `json:"state"`
	Membership struct {
		Watchlist []string `json:"watchlist"`
		Purchased []string `json:"purchased"`
	} `json:"membership"`
	Notice noticeBody `json:"notice"`
}

func TestWatchlistRequiresLogin(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	titles := seedCatalog(t, deps)
	routes := app.routes()

	status, resp := doRequest(t, routes, http.MethodPut, "/api/v1/watchlist/"+titles["Heat"].ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	var notice noticeBody
	resp.decode(t, "notice", &notice)
	assert.Equal(t, "Login required", notice.Title)
	assert.Equal(t, "error", notice.Kind)

	ids, err := deps.store.Watchlist.TitleIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWatchlistFlow(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	titles := seedCatalog(t, deps)
	routes := app.routes()
	token := deps.signIn(&models.User{ID: 1, Email: "ann@example.com", IsActive: true})
	heat := titles["Heat"].ID

	status, resp := doRequest(t, routes, http.MethodPut, "/api/v1/watchlist/"+heat, token, nil)
	require.Equal(t, http.StatusOK, status)
	var result watchlistResultBody
	resp.decode(t, "watchlist", &result)
	assert.Equal(t, "present", result.State)
	assert.Equal(t, []string{heat}, result.Membership.Watchlist)

	status, resp = doRequest(t, routes, http.MethodPut, "/api/v1/watchlist/"+heat, token, nil)
	assert.Equal(t, http.StatusConflict, status)
	var notice noticeBody
	resp.decode(t, "notice", &notice)
	assert.Equal(t, "error", notice.Kind)

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/titles", token, nil)
	require.Equal(t, http.StatusOK, status)
	var page pageBody
	resp.decode(t, "page", &page)
	for _, view := range page.Titles {
		assert.Equal(t, view.ID == heat, view.InWatchlist, view.Name)
	}

	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/watchlist", token, nil)
	require.Equal(t, http.StatusOK, status)
	var watchlistPage struct {
		Count int `json:"count"`
	}
	resp.decode(t, "watchlist", &watchlistPage)
	assert.Equal(t, 1, watchlistPage.Count)

	status, resp = doRequest(t, routes, http.MethodPost, "/api/v1/watchlist/"+heat+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, status)
	result = watchlistResultBody{}
	resp.decode(t, "watchlist", &result)
	assert.Equal(t, "absent", result.State)
	assert.Empty(t, result.Membership.Watchlist)

	status, _ = doRequest(t, routes, http.MethodDelete, "/api/v1/watchlist/"+heat, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doRequest(t, routes, http.MethodPut, "/api/v1/watchlist/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

var errStoreDown = errors.New("connection refused")

type brokenWatchlist struct {
	services.WatchlistStore
}

func (brokenWatchlist) Insert(context.Context, int64, string) error {
	return errStoreDown
}

type brokenPurchases struct {
	services.PurchaseStore
}

func (brokenPurchases) Exists(context.Context, int64, string) (bool, error) {
	return false, errStoreDown
}

func TestStoreFailuresBecomeNotices(t *testing.T) {
	app, deps := newTestApplicationWithStores(nil, t, func(s services.Stores) services.Stores {
		s.Watchlist = brokenWatchlist{s.Watchlist}
		s.Purchases = brokenPurchases{s.Purchases}
		return s
	})
	titles := seedCatalog(t, deps)
	routes := app.routes()
	token := deps.signIn(&models.User{ID: 1, Email: "ann@example.com", IsActive: true})

	testCases := []struct {
		name, method, target string
	}{
		{"add to watchlist", http.MethodPut, "/api/v1/watchlist/" + titles["Heat"].ID},
		{"toggle watchlist", http.MethodPost, "/api/v1/watchlist/" + titles["Heat"].ID + "/toggle"},
		{"purchase", http.MethodPost, "/api/v1/titles/" + titles["Nope"].ID + "/purchase"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := doRequest(t, routes, tc.method, tc.target, token, nil)
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.False(t, resp.Success)
			var notice noticeBody
			resp.decode(t, "notice", &notice)
			assert.Equal(t, "error", notice.Kind)
			assert.Equal(t, "Error", notice.Title)
			assert.Equal(t, errStoreDown.Error(), notice.Description)
		})
	}
}

func TestPurchaseTitle(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	titles := seedCatalog(t, deps)
	routes := app.routes()
	token := deps.signIn(&models.User{ID: 1, Email: "ann@example.com", IsActive: true})

	status, resp := doRequest(t, routes, http.MethodPost, "/api/v1/titles/"+titles["Nope"].ID+"/purchase", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	var notice noticeBody
	resp.decode(t, "notice", &notice)
	assert.Equal(t, "Login required", notice.Title)

	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/titles/"+titles["Heat"].ID+"/purchase", token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, resp = doRequest(t, routes, http.MethodPost, "/api/v1/titles/"+titles["Nope"].ID+"/purchase", token, nil)
	require.Equal(t, http.StatusOK, status)
	notice = noticeBody{}
	resp.decode(t, "notice", &notice)
	assert.Equal(t, "Coming Soon", notice.Title)
	assert.Equal(t, "info", notice.Kind)

	unactivated := deps.signIn(&models.User{ID: 2, Email: "bob@example.com"})
	status, resp = doRequest(t, routes, http.MethodPost, "/api/v1/titles/"+titles["Nope"].ID+"/purchase", unactivated, nil)
	require.Equal(t, http.StatusOK, status)
	notice = noticeBody{}
	resp.decode(t, "notice", &notice)
	assert.Equal(t, "Coming Soon", notice.Title)

	deps.store.AddPurchase(1, titles["Nope"].ID, ptr(3.99))
	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/titles/"+titles["Nope"].ID+"/purchase", token, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestDashboard(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	titles := seedCatalog(t, deps)
	routes := app.routes()
	token := deps.signIn(&models.User{ID: 1, Email: "ann@example.com", IsActive: true})

	require.NoError(t, deps.store.Watchlist.Insert(context.Background(), 1, titles["Dark"].ID))
	deps.store.AddPurchase(1, titles["Nope"].ID, ptr(5.0))
	deps.store.AddPurchase(1, titles["Heat"].ID, nil)
	deps.store.AddPurchase(1, titles["Hype"].ID, ptr(3.0))
	require.NoError(t, deps.store.RemoveTitle(titles["Hype"].ID))

	status, _ := doRequest(t, routes, http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp := doRequest(t, routes, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard struct {
		Stats struct {
			WatchlistCount int     `json:"watchlist_count"`
			PurchasedCount int     `json:"purchased_count"`
			TotalSpent     float64 `json:"total_spent"`
		} `json:"stats"`
	}
	resp.decode(t, "dashboard", &dashboard)
	assert.Equal(t, 1, dashboard.Stats.WatchlistCount)
	assert.Equal(t, 2, dashboard.Stats.PurchasedCount)
	assert.InDelta(t, 8.0, dashboard.Stats.TotalSpent, 1e-9)
}

func TestAdminTitles(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	routes := app.routes()
	adminToken := deps.signIn(&models.User{ID: 1, Email: "admin@example.com", Role: "admin", IsActive: true})
	userToken := deps.signIn(&models.User{ID: 2, Email: "user@example.com", Role: "user", IsActive: true})
	body := map[string]any{
		"name":                "Heat",
		"release_year":        1995,
		"genre":               "Action",
		"rating":              8.3,
		"runtime_minutes":     170,
		"streaming_platforms": []string{"Netflix", "Max"},
	}

	status, _ := doRequest(t, routes, http.MethodPost, "/api/v1/titles", "", body)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/titles", userToken, body)
	assert.Equal(t, http.StatusForbidden, status)

	status, resp := doRequest(t, routes, http.MethodPost, "/api/v1/titles", adminToken, body)
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID      string `json:"id"`
		Runtime string `json:"runtime_minutes"`
	}
	resp.decode(t, "title", &created)
	assert.Equal(t, "170 mins", created.Runtime)

	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/titles", adminToken, body)
	assert.Equal(t, http.StatusConflict, status)

	body["streaming_platforms"] = []string{"Netflix", "Netflix"}
	body["name"] = "Other"
	status, resp = doRequest(t, routes, http.MethodPost, "/api/v1/titles", adminToken, body)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var errs map[string]string
	resp.decode(t, "errors", &errs)
	assert.Contains(t, errs, "streaming_platforms")

	status, _ = doRequest(t, routes, http.MethodDelete, "/api/v1/titles/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, routes, http.MethodDelete, "/api/v1/titles/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAccounts(t *testing.T) {
	app, deps := NewTestApplication(nil, t)
	routes := app.routes()

	status, resp := doRequest(t, routes, http.MethodPost, "/api/v1/accounts/signup", "", map[string]string{
		"email": "ann@example.com", "username": "ann", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status)
	var userID int64
	resp.decode(t, "user_id", &userID)
	assert.Equal(t, int64(1), userID)
	assert.Equal(t, []string{"ann@example.com"}, deps.mailer.recipients)

	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/accounts/signup", "", map[string]string{
		"email": "ann@example.com", "username": "ann", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, resp = doRequest(t, routes, http.MethodPost, "/api/v1/accounts/signup", "", map[string]string{
		"email": "nope", "username": "a", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var errs map[string]string
	resp.decode(t, "errors", &errs)
	assert.Len(t, errs, 3)

	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/accounts/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = doRequest(t, routes, http.MethodPut, "/api/v1/accounts/activation", "", map[string]string{"token": "bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	errs = nil
	resp.decode(t, "errors", &errs)
	assert.Equal(t, "invalid or expired activation token", errs["token"])

	status, _ = doRequest(t, routes, http.MethodPut, "/api/v1/accounts/activation", "", map[string]string{"token": "ACTIVATE"})
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/accounts/activation/new-token", "", map[string]string{"email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	user, err := deps.sso.GetUser(context.Background(), auth.GetUserParams{ID: 1})
	require.NoError(t, err)
	token := deps.signIn(user)
	status, resp = doRequest(t, routes, http.MethodGet, "/api/v1/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Email    string `json:"email"`
		IsActive bool   `json:"is_active"`
	}
	resp.decode(t, "user", &me)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.True(t, me.IsActive)

	status, _ = doRequest(t, routes, http.MethodPost, "/api/v1/accounts/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, routes, http.MethodGet, "/api/v1/accounts/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := NewTestApplication(nil, t)
	status, resp := doRequest(t, app.routes(), http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, resp.Success)
}
