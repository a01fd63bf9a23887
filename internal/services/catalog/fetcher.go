package catalog

import (
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/domain/models"
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

type TitlesStorage interface {
	List(ctx context.Context, q filters.TitleQuery) ([]models.Title, error)
	Get(ctx context.Context, id string) (*models.Title, error)
}

type WatchlistStorage interface {
	ListForUser(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)
	TitleIDs(ctx context.Context, userID int64) ([]string, error)
}

type PurchasesStorage interface {
	ListForUser(ctx context.Context, userID int64) ([]models.PurchaseRecord, error)
	TitleIDs(ctx context.Context, userID int64) ([]string, error)
}

// Fetched is what one page load pulls from the store.
// Degraded is set when any read failed and its part was replaced by an empty result.
type Fetched struct {
	Titles     []models.Title
	Membership models.Membership
	Degraded   bool
}

// Fetcher performs the read side of every page. It never returns store errors:
// failures are logged and resolve to empty collections.
type Fetcher struct {
	log       *slog.Logger
	titles    TitlesStorage
	watchlist WatchlistStorage
	purchases PurchasesStorage
	timeout   time.Duration
}

func NewFetcher(
	log *slog.Logger,
	titles TitlesStorage,
	watchlist WatchlistStorage,
	purchases PurchasesStorage,
	timeout time.Duration,
) *Fetcher {
	return &Fetcher{
		log:       log,
		titles:    titles,
		watchlist: watchlist,
		purchases: purchases,
		timeout:   timeout,
	}
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// Fetch loads the titles described by q and the user's membership sets concurrently.
func (f *Fetcher) Fetch(ctx context.Context, user *models.User, q filters.TitleQuery) Fetched {
	const op = "catalog.Fetcher.Fetch"
	log := f.log.With("op", op, "sort", q.Sort, "limit", q.Limit)
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	var (
		titles     []models.Title
		membership models.Membership
		degraded   bool
		g          errgroup.Group
	)
	g.Go(func() error {
		var err error
		titles, err = f.titles.List(ctx, q)
		if err != nil {
			titles = nil
		}
		return err
	})
	g.Go(func() error {
		membership, degraded = f.membership(ctx, user)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to fetch titles", "errMsg", err.Error())
		degraded = true
	}
	if titles == nil {
		titles = []models.Title{}
	}
	return Fetched{Titles: titles, Membership: membership, Degraded: degraded}
}

// Membership rebuilds both membership sets from the store.
func (f *Fetcher) Membership(ctx context.Context, user *models.User) (models.Membership, bool) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	return f.membership(ctx, user)
}

func (f *Fetcher) membership(ctx context.Context, user *models.User) (models.Membership, bool) {
	const op = "catalog.Fetcher.membership"
	if user.IsAnonymous() {
		return models.NewMembership(nil, nil), false
	}
	log := f.log.With("op", op, "user_id", user.ID)

	var (
		watchlistIDs, purchasedIDs []string
		watchlistErr, purchasedErr error
		g                          errgroup.Group
	)
	g.Go(func() error {
		watchlistIDs, watchlistErr = f.watchlist.TitleIDs(ctx, user.ID)
		return watchlistErr
	})
	g.Go(func() error {
		purchasedIDs, purchasedErr = f.purchases.TitleIDs(ctx, user.ID)
		return purchasedErr
	})
	degraded := g.Wait() != nil
	if watchlistErr != nil {
		log.Error("failed to fetch watchlist ids", "errMsg", watchlistErr.Error())
		watchlistIDs = nil
	}
	if purchasedErr != nil {
		log.Error("failed to fetch purchased ids", "errMsg", purchasedErr.Error())
		purchasedIDs = nil
	}
	return models.NewMembership(watchlistIDs, purchasedIDs), degraded
}

// WatchlistEntries returns the user's joined watchlist rows, newest first.
func (f *Fetcher) WatchlistEntries(ctx context.Context, user *models.User) ([]models.WatchlistEntry, bool) {
	const op = "catalog.Fetcher.WatchlistEntries"
	if user.IsAnonymous() {
		return []models.WatchlistEntry{}, false
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	entries, err := f.watchlist.ListForUser(ctx, user.ID)
	if err != nil {
		f.log.Error("failed to fetch watchlist", "op", op, "user_id", user.ID, "errMsg", err.Error())
		return []models.WatchlistEntry{}, true
	}
	return entries, false
}

// Purchases returns the user's joined purchase rows, newest first.
func (f *Fetcher) Purchases(ctx context.Context, user *models.User) ([]models.PurchaseRecord, bool) {
	const op = "catalog.Fetcher.Purchases"
	if user.IsAnonymous() {
		return []models.PurchaseRecord{}, false
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	records, err := f.purchases.ListForUser(ctx, user.ID)
	if err != nil {
		f.log.Error("failed to fetch purchases", "op", op, "user_id", user.ID, "errMsg", err.Error())
		return []models.PurchaseRecord{}, true
	}
	return records, false
}

// Present drops absent entries from a projection of optional nested records.
func Present[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
