package session

import (
	"cinehub/proj/internal/domain/models"
	"context"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Unknown State = iota
	Active
	Revoked
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Revoked:
		return "revoked"
	}
	return "unknown"
}

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
	Expired   EventKind = "expired"
)

type Event struct {
	Kind EventKind
	User *models.User
}

type Listener func(Event)

type entry struct {
	user      *models.User
	expiresAt time.Time
	revoked   bool
}

type subscription struct {
	id int
	fn Listener
}

// Holder is the process-wide registry of signed-in sessions keyed by access token.
// Listeners run synchronously, outside the lock, in subscription order.
type Holder struct {
	log    *slog.Logger
	now    func() time.Time
	mu     sync.RWMutex
	byTok  map[string]*entry
	subs   []subscription
	nextID int
	closed bool
}

func New(log *slog.Logger) *Holder {
	return &Holder{
		log:   log,
		now:   time.Now,
		byTok: make(map[string]*entry),
	}
}

func (h *Holder) snapshot() []Listener {
	listeners := make([]Listener, 0, len(h.subs))
	for _, s := range h.subs {
		listeners = append(listeners, s.fn)
	}
	return listeners
}

func notify(listeners []Listener, e Event) {
	for _, fn := range listeners {
		fn(e)
	}
}

// SignIn registers token for user until expiresAt.
func (h *Holder) SignIn(token string, user *models.User, expiresAt time.Time) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.byTok[token] = &entry{user: user, expiresAt: expiresAt}
	listeners := h.snapshot()
	h.mu.Unlock()
	notify(listeners, Event{Kind: SignedIn, User: user})
}

// SignOut revokes token. A revoked token stays in the holder until it expires
// and must not be signed in again.
func (h *Holder) SignOut(token string) bool {
	h.mu.Lock()
	e, ok := h.byTok[token]
	if !ok || e.revoked {
		h.mu.Unlock()
		return false
	}
	e.revoked = true
	listeners := h.snapshot()
	h.mu.Unlock()
	notify(listeners, Event{Kind: SignedOut, User: e.user})
	return true
}

// Update replaces the user of every session that belongs to user.ID and returns how many changed.
func (h *Holder) Update(user *models.User) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.byTok {
		if e.user != nil && e.user.ID == user.ID {
			e.user = user
			n++
		}
	}
	return n
}

// Lookup returns the user for token when the session is active.
func (h *Holder) Lookup(token string) (*models.User, State) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.byTok[token]
	if !ok || !h.now().Before(e.expiresAt) {
		return nil, Unknown
	}
	if e.revoked {
		return nil, Revoked
	}
	return e.user, Active
}

// Subscribe registers fn for session events and returns a function removing it.
func (h *Holder) Subscribe(fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Prune drops sessions expired at now and returns how many were removed.
// Listeners get an Expired event for every session that was still active.
func (h *Holder) Prune(now time.Time) int {
	h.mu.Lock()
	removed := 0
	expired := make([]*models.User, 0)
	for tok, e := range h.byTok {
		if now.Before(e.expiresAt) {
			continue
		}
		delete(h.byTok, tok)
		removed++
		if !e.revoked {
			expired = append(expired, e.user)
		}
	}
	listeners := h.snapshot()
	h.mu.Unlock()
	for _, u := range expired {
		notify(listeners, Event{Kind: Expired, User: u})
	}
	return removed
}

func (h *Holder) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byTok)
}

// Run prunes expired sessions every interval until ctx is done.
func (h *Holder) Run(ctx context.Context, interval time.Duration) {
	const op = "session.Holder.Run"
	log := h.log.With("op", op)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Prune(h.now()); n > 0 {
				log.Debug("pruned expired sessions", "count", n)
			}
		}
	}
}

// Close drops every session and listener. Later sign-ins are ignored.
func (h *Holder) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.byTok = make(map[string]*entry)
	h.subs = nil
}
