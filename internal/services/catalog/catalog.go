package catalog

import (
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/domain/stats"
	"cinehub/proj/internal/lib/trailer"
	"cinehub/proj/internal/storage"
	"context"
	"errors"
	"log/slog"
	"time"
)

type Options struct {
	TopLimit     int
	SeriesGenres []string
}

type Service struct {
	log     *slog.Logger
	fetcher *Fetcher
	titles  TitlesStorage
	opts    Options
}

func New(log *slog.Logger, fetcher *Fetcher, titles TitlesStorage, opts Options) *Service {
	return &Service{
		log:     log,
		fetcher: fetcher,
		titles:  titles,
		opts:    opts,
	}
}

type PageStats struct {
	Count         int     `json:"count"`
	Visible       int     `json:"visible"`
	AverageRating float64 `json:"average_rating"`
}

type Page struct {
	Titles   []models.TitleView `json:"titles"`
	Genres   []string           `json:"genres"`
	Decades  []int              `json:"decades"`
	Stats    PageStats          `json:"stats"`
	Degraded bool               `json:"degraded"`
}

type WatchlistPage struct {
	Titles   []models.TitleView `json:"titles"`
	Count    int                `json:"count"`
	Degraded bool               `json:"degraded"`
}

type OwnedTitle struct {
	models.TitleView
	AmountPaid  *float64  `json:"amount_paid"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type DashboardStats struct {
	WatchlistCount int     `json:"watchlist_count"`
	PurchasedCount int     `json:"purchased_count"`
	TotalSpent     float64 `json:"total_spent"`
}

type Dashboard struct {
	Watchlist []models.TitleView `json:"watchlist"`
	Purchased []OwnedTitle       `json:"purchased"`
	Stats     DashboardStats     `json:"stats"`
	Degraded  bool               `json:"degraded"`
}

// NewTitleView derives the per-user flags of a title.
func NewTitleView(t *models.Title, m models.Membership) models.TitleView {
	purchased := m.Owns(t.ID)
	return models.TitleView{
		Title:       t,
		InWatchlist: m.InWatchlist(t.ID),
		IsPurchased: purchased,
		CanPurchase: t.IsRentable() && !purchased,
		EmbedURL:    trailer.EmbedURL(t.TrailerURL),
	}
}

func views(titles []models.Title, m models.Membership) []models.TitleView {
	out := make([]models.TitleView, 0, len(titles))
	for i := range titles {
		out = append(out, NewTitleView(&titles[i], m))
	}
	return out
}

func (s *Service) page(ctx context.Context, user *models.User, q filters.TitleQuery, p filters.Predicates, ranked bool) Page {
	fetched := s.fetcher.Fetch(ctx, user, q)
	visible := filters.Apply(fetched.Titles, p)
	titleViews := views(visible, fetched.Membership)
	if ranked {
		ranks := stats.Ranks(len(titleViews))
		for i := range titleViews {
			titleViews[i].Rank = &ranks[i]
		}
	}
	return Page{
		Titles:  titleViews,
		Genres:  filters.Genres(fetched.Titles),
		Decades: filters.Decades(fetched.Titles),
		Stats: PageStats{
			Count:         stats.Count(fetched.Titles),
			Visible:       stats.Count(visible),
			AverageRating: stats.Average(fetched.Titles, stats.Rating),
		},
		Degraded: fetched.Degraded,
	}
}

// Catalog lists every title, newest release first.
func (s *Service) Catalog(ctx context.Context, user *models.User, p filters.Predicates) Page {
	return s.page(ctx, user, filters.AllTitles(), p, false)
}

// TopTitles lists the highest rated titles with their rank labels.
func (s *Service) TopTitles(ctx context.Context, user *models.User, p filters.Predicates) Page {
	return s.page(ctx, user, filters.TopRated(s.opts.TopLimit), p, true)
}

func (s *Service) TopSeries(ctx context.Context, user *models.User, p filters.Predicates) Page {
	return s.page(ctx, user, filters.TopRatedSeries(s.opts.TopLimit, s.opts.SeriesGenres), p, true)
}

// TitleDetail is a single title view. Degraded is set when the user's membership could not be read.
type TitleDetail struct {
	models.TitleView
	Degraded bool `json:"degraded"`
}

func (s *Service) Title(ctx context.Context, user *models.User, id string) (*TitleDetail, error) {
	const op = "catalog.Service.Title"
	log := s.log.With("op", op, "id", id)
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	membership, degraded := s.fetcher.Membership(ctx, user)
	return &TitleDetail{TitleView: NewTitleView(title, membership), Degraded: degraded}, nil
}

func (s *Service) Watchlist(ctx context.Context, user *models.User) WatchlistPage {
	entries, degraded := s.fetcher.WatchlistEntries(ctx, user)
	membership, membershipDegraded := s.fetcher.Membership(ctx, user)
	titles := watchlistTitles(entries)
	return WatchlistPage{
		Titles:   views(titles, membership),
		Count:    stats.Count(titles),
		Degraded: degraded || membershipDegraded,
	}
}

func (s *Service) Dashboard(ctx context.Context, user *models.User) Dashboard {
	entries, watchlistDegraded := s.fetcher.WatchlistEntries(ctx, user)
	records, purchasesDegraded := s.fetcher.Purchases(ctx, user)

	watchlistIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		watchlistIDs = append(watchlistIDs, e.TitleID)
	}
	purchasedIDs := make([]string, 0, len(records))
	for _, r := range records {
		purchasedIDs = append(purchasedIDs, r.TitleID)
	}
	membership := models.NewMembership(watchlistIDs, purchasedIDs)

	titles := watchlistTitles(entries)
	owned := make([]OwnedTitle, 0, len(records))
	for _, r := range records {
		if r.Title == nil {
			continue
		}
		owned = append(owned, OwnedTitle{
			TitleView:   NewTitleView(r.Title, membership),
			AmountPaid:  r.AmountPaid,
			PurchasedAt: r.PurchasedAt,
		})
	}
	return Dashboard{
		Watchlist: views(titles, membership),
		Purchased: owned,
		Stats: DashboardStats{
			WatchlistCount: stats.Count(titles),
			PurchasedCount: stats.Count(owned),
			TotalSpent:     stats.Sum(records, stats.AmountPaid),
		},
		Degraded: watchlistDegraded || purchasesDegraded,
	}
}

func watchlistTitles(entries []models.WatchlistEntry) []models.Title {
	joined := make([]*models.Title, 0, len(entries))
	for _, e := range entries {
		joined = append(joined, e.Title)
	}
	return Present(joined)
}
