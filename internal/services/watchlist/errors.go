package watchlist

import "errors"

var (
	ErrLoginRequired      = errors.New("login required")
	ErrAlreadyInWatchlist = errors.New("title is already in the watchlist")
	ErrNotInWatchlist     = errors.New("title is not in the watchlist")
)
