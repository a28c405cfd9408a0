// Package form implements the inflected-form reverse index repository.
// Rows are unique per (entry, normalized form); duplicate sightings collapse
// on write via ON CONFLICT DO NOTHING.
package form

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/domain"
)

// Repo provides inflected-form persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new inflected-form repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const ensureSQL = `
INSERT INTO inflected_forms (entry_id, form, form_normalized, morphology)
VALUES ($1, $2, $3, $4)
ON CONFLICT (entry_id, form_normalized) DO NOTHING`

const listByEntrySQL = `
SELECT id, entry_id, form, form_normalized, morphology, created_at
FROM inflected_forms
WHERE entry_id = $1
ORDER BY form_normalized`

const countByEntrySQL = `
SELECT count(*) FROM inflected_forms WHERE entry_id = $1`

// repointSQL moves a victim's forms to the survivor. Forms the survivor
// already indexes under the same key are deleted instead of moved, honoring
// the (entry, normalized form) uniqueness invariant.
const repointSQL = `
UPDATE inflected_forms f SET entry_id = $2
WHERE f.entry_id = $1
  AND NOT EXISTS (
      SELECT 1 FROM inflected_forms s
      WHERE s.entry_id = $2 AND s.form_normalized = f.form_normalized
  )`

const dropRemainderSQL = `
DELETE FROM inflected_forms WHERE entry_id = $1`

// Ensure records a surface form sighting for an entry. Idempotent: an
// already-indexed (entry, normalized form) pair is left untouched.
// Reports whether a new row was inserted.
func (r *Repo) Ensure(ctx context.Context, entryID int64, form, normalized string, morphology *string) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, ensureSQL, entryID, form, normalized, morphology)
	if err != nil {
		return false, postgres.MapError(err, "inflected_form", entryID)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByEntry returns every indexed form for an entry.
func (r *Repo) ListByEntry(ctx context.Context, entryID int64) ([]domain.InflectedForm, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByEntrySQL, entryID)
	if err != nil {
		return nil, fmt.Errorf("list inflected forms: %w", err)
	}
	defer rows.Close()

	return scanForms(rows)
}

// CountByEntry returns the number of indexed forms for an entry.
func (r *Repo) CountByEntry(ctx context.Context, entryID int64) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByEntrySQL, entryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inflected forms: %w", err)
	}

	return count, nil
}

// Repoint rewrites every form of victimID to point at survivorID, collapsing
// keys the survivor already carries. Returns the number of rows moved
// (collapsed duplicates are dropped, not counted).
func (r *Repo) Repoint(ctx context.Context, victimID, survivorID int64) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, repointSQL, victimID, survivorID)
	if err != nil {
		return 0, postgres.MapError(err, "inflected_form", victimID)
	}
	moved := tag.RowsAffected()

	// Whatever still references the victim duplicated a survivor key.
	if _, err := querier.Exec(ctx, dropRemainderSQL, victimID); err != nil {
		return moved, postgres.MapError(err, "inflected_form", victimID)
	}

	return moved, nil
}

func scanForms(rows pgx.Rows) ([]domain.InflectedForm, error) {
	var forms []domain.InflectedForm
	for rows.Next() {
		var (
			f     domain.InflectedForm
			morph pgtype.Text
		)
		if err := rows.Scan(&f.ID, &f.WordID, &f.Form, &f.FormNormalized, &morph, &f.CreatedAt); err != nil {
			return nil, err
		}
		if morph.Valid {
			m := morph.String
			f.Morphology = &m
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if forms == nil {
		forms = []domain.InflectedForm{}
	}

	return forms, nil
}
