package models

import "cinehub/proj/internal/storage/postgres"

type Models struct {
	Title     *TitleModel
	Watchlist *WatchlistModel
	Purchase  *PurchaseModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		Title:     &TitleModel{db.Conn},
		Watchlist: &WatchlistModel{db.Conn},
		Purchase:  &PurchaseModel{db.Conn},
	}
}
