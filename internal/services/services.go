package services

import (
	"cinehub/proj/internal/config"
	"cinehub/proj/internal/services/auth"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/services/purchases"
	"cinehub/proj/internal/services/titles"
	"cinehub/proj/internal/services/watchlist"
	"cinehub/proj/internal/storage/memory"
	pgmodels "cinehub/proj/internal/storage/postgres/models"
	"log/slog"
)

type TitleStore interface {
	catalog.TitlesStorage
	titles.TitlesStorage
}

type WatchlistStore interface {
	catalog.WatchlistStorage
	watchlist.Storage
}

type PurchaseStore interface {
	catalog.PurchasesStorage
	purchases.Storage
}

// Stores is the set of tables the services read and write, independent of the driver.
type Stores struct {
	Titles    TitleStore
	Watchlist WatchlistStore
	Purchases PurchaseStore
}

func PostgresStores(m *pgmodels.Models) Stores {
	return Stores{Titles: m.Title, Watchlist: m.Watchlist, Purchases: m.Purchase}
}

func MemoryStores(s *memory.Storage) Stores {
	return Stores{Titles: s.Title, Watchlist: s.Watchlist, Purchases: s.Purchase}
}

// Deps are the external collaborators of the auth service.
type Deps struct {
	Mailer       auth.MailProvider
	Sso          auth.SsoProvider
	Sessions     auth.SessionStore
	TaskExecutor auth.TaskExecutor
}

type Services struct {
	Auth      *auth.AuthService
	Catalog   *catalog.Service
	Titles    *titles.TitleService
	Watchlist *watchlist.Service
	Purchases *purchases.Service
}

func New(log *slog.Logger, cfg *config.Config, stores Stores, deps Deps) *Services {
	fetcher := catalog.NewFetcher(log, stores.Titles, stores.Watchlist, stores.Purchases, cfg.Catalog.FetchTimeout)
	return &Services{
		Auth: auth.New(log, deps.Mailer, deps.Sso, deps.Sessions, deps.TaskExecutor, cfg.AppSecret),
		Catalog: catalog.New(log, fetcher, stores.Titles, catalog.Options{
			TopLimit:     cfg.Catalog.TopLimit,
			SeriesGenres: cfg.Catalog.SeriesGenres,
		}),
		Titles:    titles.New(log, stores.Titles),
		Watchlist: watchlist.New(log, stores.Watchlist, fetcher),
		Purchases: purchases.New(log, stores.Titles, stores.Purchases),
	}
}
