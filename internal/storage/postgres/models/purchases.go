package models

import (
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/storage/postgres"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseModel struct {
	DB *pgxpool.Pool
}

// ListForUser returns the user's purchases joined with their titles, newest first.
// Titles removed from the catalog come back as a nil Title.
func (m *PurchaseModel) ListForUser(ctx context.Context, userID int64) ([]models.PurchaseRecord, error) {
	rows, err := m.DB.Query(
		ctx,
		`SELECT p.id, p.user_id, p.title_id::text AS title_id, p.amount_paid::float8 AS amount_paid,
		p.purchased_at, `+joinedTitle+`
		FROM purchases p LEFT JOIN titles t ON t.id = p.title_id
		WHERE p.user_id = $1
		ORDER BY p.purchased_at DESC, p.id DESC`,
		userID,
	)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PurchaseRecord])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return records, nil
}

func (m *PurchaseModel) TitleIDs(ctx context.Context, userID int64) ([]string, error) {
	rows, err := m.DB.Query(ctx, `SELECT DISTINCT title_id::text FROM purchases WHERE user_id = $1`, userID)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return ids, nil
}

func (m *PurchaseModel) Exists(ctx context.Context, userID int64, titleID string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM purchases WHERE user_id = $1 AND title_id = $2)`,
		userID, titleID,
	).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err)
	}
	return exists, nil
}
