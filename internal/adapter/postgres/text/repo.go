// Package text implements the source text repository using PostgreSQL.
package text

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/domain"
)

// Repo provides source text persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new source text repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const textColumns = `id, title, author, content, difficulty, created_at`

const createSQL = `
INSERT INTO source_texts (title, author, content, difficulty)
VALUES ($1, $2, $3, $4)
RETURNING ` + textColumns

const getByIDSQL = `
SELECT ` + textColumns + `
FROM source_texts
WHERE id = $1`

const listSQL = `
SELECT ` + textColumns + `
FROM source_texts
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`

const deleteSQL = `
DELETE FROM source_texts WHERE id = $1`

// Create stores a new source text and returns it with generated fields.
func (r *Repo) Create(ctx context.Context, t domain.SourceText) (*domain.SourceText, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, createSQL, t.Title, t.Author, t.Content, t.Difficulty)
	created, err := scanText(row)
	if err != nil {
		return nil, postgres.MapError(err, "source_text", 0)
	}

	return created, nil
}

// GetByID fetches a single text.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.SourceText, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)
	t, err := scanText(row)
	if err != nil {
		return nil, postgres.MapError(err, "source_text", id)
	}

	return t, nil
}

// List returns texts newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]domain.SourceText, error) {
	if limit <= 0 {
		limit = 50
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list source texts: %w", err)
	}
	defer rows.Close()

	var texts []domain.SourceText
	for rows.Next() {
		t, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		texts = append(texts, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if texts == nil {
		texts = []domain.SourceText{}
	}

	return texts, nil
}

// Delete removes a text. Token links and annotations cascade in the schema.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "source_text", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source_text %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanText(row pgx.Row) (*domain.SourceText, error) {
	var (
		t      domain.SourceText
		author pgtype.Text
	)

	if err := row.Scan(&t.ID, &t.Title, &author, &t.Content, &t.Difficulty, &t.CreatedAt); err != nil {
		return nil, err
	}

	if author.Valid {
		a := author.String
		t.Author = &a
	}

	return &t, nil
}
