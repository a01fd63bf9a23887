package models

import (
	"encoding/json"
	"sort"
)

// Membership holds the title identifiers a user has in each per-user relation.
// It is always rebuilt from store results, never patched in place.
type Membership struct {
	Watchlist map[string]struct{}
	Purchased map[string]struct{}
}

func NewMembership(watchlistIDs, purchasedIDs []string) Membership {
	m := Membership{
		Watchlist: make(map[string]struct{}, len(watchlistIDs)),
		Purchased: make(map[string]struct{}, len(purchasedIDs)),
	}
	for _, id := range watchlistIDs {
		m.Watchlist[id] = struct{}{}
	}
	for _, id := range purchasedIDs {
		m.Purchased[id] = struct{}{}
	}
	return m
}

func (m Membership) InWatchlist(titleID string) bool {
	_, ok := m.Watchlist[titleID]
	return ok
}

func (m Membership) Owns(titleID string) bool {
	_, ok := m.Purchased[titleID]
	return ok
}

func (m Membership) WatchlistIDs() []string {
	return keys(m.Watchlist)
}

func (m Membership) PurchasedIDs() []string {
	return keys(m.Purchased)
}

func (m Membership) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Watchlist []string `json:"watchlist"`
		Purchased []string `json:"purchased"`
	}{m.WatchlistIDs(), m.PurchasedIDs()})
}

// keys returns the set members sorted.
func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rank is the display position of a title on the rating-ordered pages.
type Rank struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Podium   bool   `json:"podium"`
}

// TitleView is a title as one user sees it.
type TitleView struct {
	*Title
	InWatchlist bool   `json:"in_watchlist"`
	IsPurchased bool   `json:"is_purchased"`
	CanPurchase bool   `json:"can_purchase"`
	EmbedURL    string `json:"embed_url,omitempty"`
	Rank        *Rank  `json:"rank,omitempty"`
}

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a dismissable user-facing message attached to mutation responses.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

func InfoNotice(title, description string) *Notice {
	return &Notice{Kind: NoticeInfo, Title: title, Description: description}
}

func ErrorNotice(title, description string) *Notice {
	return &Notice{Kind: NoticeError, Title: title, Description: description}
}
