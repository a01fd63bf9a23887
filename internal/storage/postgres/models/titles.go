package models

import (
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/domain/models"
	"cinehub/proj/internal/storage"
	"cinehub/proj/internal/storage/postgres"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const titleColumns = `id::text AS id, name, synopsis, release_year, genre, country, director, cast_members,
	awards, poster_url, trailer_url, price::float8 AS price, is_premium, rating, runtime_minutes,
	streaming_platforms, created_at`

type TitleModel struct {
	DB *pgxpool.Pool
}

func genrePatterns(genres []string) []string {
	patterns := make([]string, 0, len(genres))
	for _, g := range genres {
		patterns = append(patterns, "%"+g+"%")
	}
	return patterns
}

func (m *TitleModel) List(ctx context.Context, q filters.TitleQuery) ([]models.Title, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM titles
	WHERE ($1 = false OR rating IS NOT NULL)
	AND (cardinality($2::text[]) = 0 OR genre ILIKE ANY($2::text[]))
	ORDER BY %s %s NULLS LAST, id ASC
	LIMIT $3
	`, titleColumns, q.SortColumn(), q.SortDirection())
	var limit *int
	if q.Limit > 0 {
		limit = &q.Limit
	}
	rows, err := m.DB.Query(ctx, query, q.RatedOnly, genrePatterns(q.GenreContains), limit)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	titles, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Title])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return titles, nil
}

func (m *TitleModel) Get(ctx context.Context, id string) (*models.Title, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+titleColumns+` FROM titles WHERE id = $1`, id)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	title, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Title])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &title, nil
}

func (m *TitleModel) Insert(ctx context.Context, t *models.Title) (*models.Title, error) {
	rows, err := m.DB.Query(
		ctx,
		`INSERT INTO titles (name, synopsis, release_year, genre, country, director, cast_members, awards,
		poster_url, trailer_url, price, is_premium, rating, runtime_minutes, streaming_platforms)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::text[], '{}'), $8, $9, $10, $11, $12, $13, $14,
		COALESCE($15::text[], '{}'))
		RETURNING `+titleColumns,
		t.Name, t.Synopsis, t.ReleaseYear, t.Genre, t.Country, t.Director, t.CastMembers, t.Awards,
		t.PosterURL, t.TrailerURL, t.Price, t.IsPremium, t.Rating, t.Runtime, t.StreamingPlatforms,
	)
	if err != nil {
		return nil, postgres.MapError(err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Title])
	if err != nil {
		return nil, postgres.MapError(err)
	}
	return &created, nil
}

// Delete removes a title. Watchlist rows cascade; purchase rows keep the dangling id.
func (m *TitleModel) Delete(ctx context.Context, id string) error {
	status, err := m.DB.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err)
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
