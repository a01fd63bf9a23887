package watchlist

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/storage"
	"context"
	"errors"
	"log/slog"
)

type State string

const (
	Absent  State = "absent"
	Present State = "present"
)

type Storage interface {
	Exists(ctx context.Context, userID int64, titleID string) (bool, error)
	Insert(ctx context.Context, userID int64, titleID string) error
	Delete(ctx context.Context, userID int64, titleID string) error
}

type MembershipFetcher interface {
	Membership(ctx context.Context, user *models.User) (models.Membership, bool)
}

// Result carries the membership sets refetched after a successful mutation.
type Result struct {
	TitleID    string            `json:"title_id"`
	State      State             `json:"state"`
	Membership models.Membership `json:"membership"`
	Degraded   bool              `json:"degraded"`
	Notice     *models.Notice    `json:"notice"`
}

type Service struct {
	log     *slog.Logger
	storage Storage
	fetcher MembershipFetcher
}

func New(log *slog.Logger, storage Storage, fetcher MembershipFetcher) *Service {
	return &Service{
		log:     log,
		storage: storage,
		fetcher: fetcher,
	}
}

func LoginRequiredNotice() *models.Notice {
	return models.ErrorNotice("Login required", "Please log in to manage your watchlist")
}

// Add moves a title from ABSENT to PRESENT.
func (s *Service) Add(ctx context.Context, user *models.User, titleID string) (*Result, error) {
	const op = "watchlist.Service.Add"
	if user.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	log := s.log.With("op", op, "user_id", user.ID, "title_id", titleID)
	if err := s.storage.Insert(ctx, user.ID, titleID); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("title already in watchlist")
			return nil, ErrAlreadyInWatchlist
		case errors.Is(err, storage.ErrRelated):
			log.Info("title not found")
			return nil, catalog.ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return s.refetch(ctx, user, titleID, Present,
		models.InfoNotice("Added to watchlist", "The title was added to your watchlist")), nil
}

// Remove moves a title from PRESENT to ABSENT.
func (s *Service) Remove(ctx context.Context, user *models.User, titleID string) (*Result, error) {
	const op = "watchlist.Service.Remove"
	if user.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	log := s.log.With("op", op, "user_id", user.ID, "title_id", titleID)
	if err := s.storage.Delete(ctx, user.ID, titleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not in watchlist")
			return nil, ErrNotInWatchlist
		}
		log.Error(err.Error())
		return nil, err
	}
	return s.refetch(ctx, user, titleID, Absent,
		models.InfoNotice("Removed from watchlist", "The title was removed from your watchlist")), nil
}

// Toggle flips the current stored state of the pair. Concurrent toggles are not
// serialized; whichever request lands last decides the stored state.
func (s *Service) Toggle(ctx context.Context, user *models.User, titleID string) (*Result, error) {
	const op = "watchlist.Service.Toggle"
	if user.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	log := s.log.With("op", op, "user_id", user.ID, "title_id", titleID)
	present, err := s.storage.Exists(ctx, user.ID, titleID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if present {
		return s.Remove(ctx, user, titleID)
	}
	return s.Add(ctx, user, titleID)
}

// refetch rebuilds the membership sets instead of patching the previous ones.
func (s *Service) refetch(ctx context.Context, user *models.User, titleID string, state State, notice *models.Notice) *Result {
	membership, degraded := s.fetcher.Membership(ctx, user)
	return &Result{
		TitleID:    titleID,
		State:      state,
		Membership: membership,
		Degraded:   degraded,
		Notice:     notice,
	}
}
