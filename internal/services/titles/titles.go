// Package titles manages the catalog contents. Reads with per-user state go through catalog.
package titles

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/services/catalog"
	"cinehub/proj/internal/storage"
	"context"
	"errors"
	"log/slog"
)

type TitlesStorage interface {
	Insert(ctx context.Context, t *models.Title) (*models.Title, error)
	Delete(ctx context.Context, id string) error
}

type TitleService struct {
	log     *slog.Logger
	storage TitlesStorage
}

func New(log *slog.Logger, storage TitlesStorage) *TitleService {
	return &TitleService{
		log:     log,
		storage: storage,
	}
}

func (s *TitleService) Create(ctx context.Context, t *models.Title) (*models.Title, error) {
	const op = "titles.TitleService.Create"
	log := s.log.With("op", op, "name", t.Name, "release_year", t.ReleaseYear)
	created, err := s.storage.Insert(ctx, t)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("title already exists")
			return nil, ErrTitleAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	log.Info("title created", "id", created.ID)
	return created, nil
}

func (s *TitleService) Delete(ctx context.Context, id string) error {
	const op = "titles.TitleService.Delete"
	log := s.log.With("op", op, "id", id)
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return catalog.ErrTitleNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
