package models

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/storage"
	"cinehub/proj/internal/storage/postgres"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// joinedTitle yields NULL instead of an all-null object when the join finds nothing.
const joinedTitle = `CASE WHEN t.id IS NULL THEN NULL ELSE to_jsonb(t) - 'created_at' END AS title`

type WatchlistModel struct {
	DB *pgxpool.Pool
}

// ListForUser returns the user's entries joined with their titles, newest first.
func (m *WatchlistModel) ListForUser(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	rows, err := m.DB.Query(
		ctx,
		`SELECT w.user_id, w.title_id::text AS title_id, w.added_at, `+joinedTitle+`
		FROM watchlist w LEFT JOIN titles t ON t.id = w.title_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC, w.title_id ASC`,
		userID,
	)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.WatchlistEntry])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return entries, nil
}

func (m *WatchlistModel) TitleIDs(ctx context.Context, userID int64) ([]string, error) {
	rows, err := m.DB.Query(ctx, `SELECT title_id::text FROM watchlist WHERE user_id = $1`, userID)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return ids, nil
}

func (m *WatchlistModel) Exists(ctx context.Context, userID int64, titleID string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM watchlist WHERE user_id = $1 AND title_id = $2)`,
		userID, titleID,
	).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err)
	}
	return exists, nil
}

func (m *WatchlistModel) Insert(ctx context.Context, userID int64, titleID string) error {
	_, err := m.DB.Exec(ctx, `INSERT INTO watchlist (user_id, title_id) VALUES ($1, $2)`, userID, titleID)
	return postgres.MapError(err)
}

func (m *WatchlistModel) Delete(ctx context.Context, userID int64, titleID string) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM watchlist WHERE user_id = $1 AND title_id = $2`, userID, titleID)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
