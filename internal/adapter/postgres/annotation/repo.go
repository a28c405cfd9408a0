// Package annotation implements the sentence annotation repository using
// PostgreSQL. Annotations are keyed by (text, sentence) and replaced on
// re-analysis, so the write path is a single upsert.
package annotation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/domain"
)

// Repo provides sentence annotation persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sentence annotation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const annotationColumns = `
    id, text_id, sentence_number, sentence, dependencies, role_groups,
    tree_svg, created_at, updated_at`

const upsertSQL = `
INSERT INTO sentence_annotations (
    text_id, sentence_number, sentence, dependencies, role_groups, tree_svg
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (text_id, sentence_number) DO UPDATE SET
    sentence     = EXCLUDED.sentence,
    dependencies = EXCLUDED.dependencies,
    role_groups  = EXCLUDED.role_groups,
    tree_svg     = EXCLUDED.tree_svg,
    updated_at   = now()
RETURNING` + annotationColumns

const getSQL = `
SELECT` + annotationColumns + `
FROM sentence_annotations
WHERE text_id = $1 AND sentence_number = $2`

const getByTextSQL = `
SELECT` + annotationColumns + `
FROM sentence_annotations
WHERE text_id = $1
ORDER BY sentence_number`

// Upsert stores a sentence annotation, replacing any previous analysis of
// the same sentence.
func (r *Repo) Upsert(ctx context.Context, a domain.SentenceAnnotation) (*domain.SentenceAnnotation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	deps, err := json.Marshal(a.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("marshal dependencies: %w", err)
	}
	roles, err := json.Marshal(a.Roles)
	if err != nil {
		return nil, fmt.Errorf("marshal role groups: %w", err)
	}

	row := querier.QueryRow(ctx, upsertSQL,
		a.TextID, a.SentenceNumber, a.Sentence, deps, roles, a.TreeSVG,
	)
	stored, err := scanAnnotation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sentence_annotation", a.TextID)
	}

	return stored, nil
}

// Get fetches the annotation for a single sentence.
func (r *Repo) Get(ctx context.Context, textID int64, sentenceNumber int) (*domain.SentenceAnnotation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getSQL, textID, sentenceNumber)
	a, err := scanAnnotation(row)
	if err != nil {
		return nil, postgres.MapError(err, "sentence_annotation", textID)
	}

	return a, nil
}

// GetByText returns all annotations of a text in sentence order.
func (r *Repo) GetByText(ctx context.Context, textID int64) ([]domain.SentenceAnnotation, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByTextSQL, textID)
	if err != nil {
		return nil, fmt.Errorf("get annotations by text: %w", err)
	}
	defer rows.Close()

	var annotations []domain.SentenceAnnotation
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if annotations == nil {
		annotations = []domain.SentenceAnnotation{}
	}

	return annotations, nil
}

func scanAnnotation(row pgx.Row) (*domain.SentenceAnnotation, error) {
	var (
		a       domain.SentenceAnnotation
		deps    []byte
		roles   []byte
		treeSVG pgtype.Text
	)

	if err := row.Scan(
		&a.ID, &a.TextID, &a.SentenceNumber, &a.Sentence, &deps, &roles,
		&treeSVG, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(deps, &a.Dependencies); err != nil {
		return nil, fmt.Errorf("unmarshal dependencies: %w", err)
	}
	if err := json.Unmarshal(roles, &a.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal role groups: %w", err)
	}
	if treeSVG.Valid {
		s := treeSVG.String
		a.TreeSVG = &s
	}

	return &a, nil
}
