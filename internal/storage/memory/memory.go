// Package memory is an in-process store with the same semantics as the postgres models.
// It backs local runs without a database and the service tests.
package memory

import (
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/storage"
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Storage struct {
	mu         sync.RWMutex
	titles     []models.Title
	watchlist  map[int64]map[string]time.Time
	purchases  []models.PurchaseRecord
	purchaseID int64
	lastTick   time.Time

	Title     *TitleStore
	Watchlist *WatchlistStore
	Purchase  *PurchaseStore
}

func New() *Storage {
	s := &Storage{watchlist: make(map[int64]map[string]time.Time)}
	s.Title = &TitleStore{s}
	s.Watchlist = &WatchlistStore{s}
	s.Purchase = &PurchaseStore{s}
	return s
}

// now is strictly increasing so recency ordering is deterministic.
func (s *Storage) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

func (s *Storage) findTitle(id string) (models.Title, bool) {
	for _, t := range s.titles {
		if t.ID == id {
			return cloneTitle(t), true
		}
	}
	return models.Title{}, false
}

func cloneTitle(t models.Title) models.Title {
	t.CastMembers = slices.Clone(t.CastMembers)
	t.StreamingPlatforms = slices.Clone(t.StreamingPlatforms)
	return t
}

// RemoveTitle deletes a title the way the database does: watchlist rows cascade,
// purchase rows are kept and left dangling.
func (s *Storage) RemoveTitle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeTitle(id)
}

func (s *Storage) removeTitle(id string) error {
	idx := slices.IndexFunc(s.titles, func(t models.Title) bool { return t.ID == id })
	if idx < 0 {
		return storage.ErrNotFound
	}
	s.titles = slices.Delete(s.titles, idx, idx+1)
	for _, entries := range s.watchlist {
		delete(entries, id)
	}
	return nil
}

// AddPurchase records a completed purchase. No user-facing flow writes purchases.
func (s *Storage) AddPurchase(userID int64, titleID string, amountPaid *float64) models.PurchaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchaseID++
	record := models.PurchaseRecord{
		ID:          s.purchaseID,
		UserID:      userID,
		TitleID:     titleID,
		AmountPaid:  amountPaid,
		PurchasedAt: s.now(),
	}
	s.purchases = append(s.purchases, record)
	return record
}

type TitleStore struct {
	s *Storage
}

func (m *TitleStore) Insert(_ context.Context, t *models.Title) (*models.Title, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	created := cloneTitle(*t)
	if created.ID == "" {
		created.ID = uuid.NewString()
	} else if _, ok := m.s.findTitle(created.ID); ok {
		return nil, storage.ErrConflict
	}
	for _, existing := range m.s.titles {
		if existing.ReleaseYear == created.ReleaseYear && strings.EqualFold(existing.Name, created.Name) {
			return nil, storage.ErrConflict
		}
	}
	if created.CastMembers == nil {
		created.CastMembers = []string{}
	}
	if created.StreamingPlatforms == nil {
		created.StreamingPlatforms = []string{}
	}
	created.CreatedAt = m.s.now()
	m.s.titles = append(m.s.titles, created)
	out := cloneTitle(created)
	return &out, nil
}

func (m *TitleStore) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.removeTitle(id)
}

func (m *TitleStore) Get(_ context.Context, id string) (*models.Title, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	t, ok := m.s.findTitle(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (m *TitleStore) List(_ context.Context, q filters.TitleQuery) ([]models.Title, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	column := q.SortColumn()
	desc := q.SortDirection() == filters.DescSort

	out := make([]models.Title, 0, len(m.s.titles))
	for _, t := range m.s.titles {
		if q.RatedOnly && t.Rating == nil {
			continue
		}
		if len(q.GenreContains) > 0 && !genreContainsAny(t.Genre, q.GenreContains) {
			continue
		}
		out = append(out, cloneTitle(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareColumn(column, &out[i], &out[j], desc); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func genreContainsAny(genre string, substrings []string) bool {
	genre = strings.ToLower(genre)
	for _, sub := range substrings {
		if strings.Contains(genre, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// compareColumn orders by column in the requested direction with NULLs last.
func compareColumn(column string, a, b *models.Title, desc bool) int {
	var c int
	switch column {
	case "rating":
		switch {
		case a.Rating == nil && b.Rating == nil:
			return 0
		case a.Rating == nil:
			return 1
		case b.Rating == nil:
			return -1
		}
		c = cmpOrdered(*a.Rating, *b.Rating)
	case "release_year":
		c = cmpOrdered(a.ReleaseYear, b.ReleaseYear)
	case "name":
		c = cmpOrdered(a.Name, b.Name)
	case "created_at":
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if desc {
		return -c
	}
	return c
}

func cmpOrdered[T int | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type WatchlistStore struct {
	s *Storage
}

func (m *WatchlistStore) ListForUser(_ context.Context, userID int64) ([]models.WatchlistEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	entries := make([]models.WatchlistEntry, 0, len(m.s.watchlist[userID]))
	for titleID, addedAt := range m.s.watchlist[userID] {
		entry := models.WatchlistEntry{UserID: userID, TitleID: titleID, AddedAt: addedAt}
		if t, ok := m.s.findTitle(titleID); ok {
			entry.Title = &t
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].AddedAt.After(entries[j].AddedAt)
		}
		return entries[i].TitleID < entries[j].TitleID
	})
	return entries, nil
}

func (m *WatchlistStore) TitleIDs(_ context.Context, userID int64) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	ids := make([]string, 0, len(m.s.watchlist[userID]))
	for id := range m.s.watchlist[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *WatchlistStore) Exists(_ context.Context, userID int64, titleID string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	_, ok := m.s.watchlist[userID][titleID]
	return ok, nil
}

func (m *WatchlistStore) Insert(_ context.Context, userID int64, titleID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.findTitle(titleID); !ok {
		return storage.ErrRelated
	}
	entries, ok := m.s.watchlist[userID]
	if !ok {
		entries = make(map[string]time.Time)
		m.s.watchlist[userID] = entries
	}
	if _, exists := entries[titleID]; exists {
		return storage.ErrConflict
	}
	entries[titleID] = m.s.now()
	return nil
}

func (m *WatchlistStore) Delete(_ context.Context, userID int64, titleID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.watchlist[userID][titleID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.s.watchlist[userID], titleID)
	return nil
}

type PurchaseStore struct {
	s *Storage
}

func (m *PurchaseStore) ListForUser(_ context.Context, userID int64) ([]models.PurchaseRecord, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	records := make([]models.PurchaseRecord, 0)
	for _, p := range m.s.purchases {
		if p.UserID != userID {
			continue
		}
		if t, ok := m.s.findTitle(p.TitleID); ok {
			p.Title = &t
		}
		records = append(records, p)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].PurchasedAt.Equal(records[j].PurchasedAt) {
			return records[i].PurchasedAt.After(records[j].PurchasedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (m *PurchaseStore) TitleIDs(_ context.Context, userID int64) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, p := range m.s.purchases {
		if p.UserID != userID {
			continue
		}
		if _, ok := seen[p.TitleID]; ok {
			continue
		}
		seen[p.TitleID] = struct{}{}
		ids = append(ids, p.TitleID)
	}
	return ids, nil
}

func (m *PurchaseStore) Exists(_ context.Context, userID int64, titleID string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, p := range m.s.purchases {
		if p.UserID == userID && p.TitleID == titleID {
			return true, nil
		}
	}
	return false, nil
}
