package purchases

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/storage"
	"context"
	"errors"
	"log/slog"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrNotRentable   = errors.New("title is not available for rent")
	ErrAlreadyOwned  = errors.New("title is already purchased")
)

type TitlesStorage interface {
	Get(ctx context.Context, id string) (*models.Title, error)
}

type Storage interface {
	Exists(ctx context.Context, userID int64, titleID string) (bool, error)
}

type Service struct {
	log       *slog.Logger
	titles    TitlesStorage
	purchases Storage
}

func New(log *slog.Logger, titles TitlesStorage, purchases Storage) *Service {
	return &Service{
		log:       log,
		titles:    titles,
		purchases: purchases,
	}
}

func LoginRequiredNotice() *models.Notice {
	return models.ErrorNotice("Login required", "Please log in to rent titles")
}

// Purchase validates a rental request. Checkout is not implemented yet, so a valid
// request always ends with the informational notice and nothing is charged or recorded.
func (s *Service) Purchase(ctx context.Context, user *models.User, titleID string) (*models.Notice, error) {
	const op = "purchases.Service.Purchase"
	if user.IsAnonymous() {
		return nil, ErrLoginRequired
	}
	log := s.log.With("op", op, "user_id", user.ID, "title_id", titleID)
	title, err := s.titles.Get(ctx, titleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, catalog.ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	if !title.IsRentable() {
		log.Info("title is not rentable", "is_premium", title.IsPremium, "price", title.Price)
		return nil, ErrNotRentable
	}
	owned, err := s.purchases.Exists(ctx, user.ID, titleID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if owned {
		log.Info("title already owned")
		return nil, ErrAlreadyOwned
	}
	log.Info("purchase requested")
	return models.InfoNotice("Coming Soon", "Payment integration will be available soon!"), nil
}
