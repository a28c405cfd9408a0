// Package word implements the lexicon entry repository using PostgreSQL.
// Candidate lookups join the inflected_forms reverse index so a surface key
// finds entries by lemma or by any previously observed form. Listing uses
// squirrel for the dynamic curation filters.
package word

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/domain"
)

// Repo provides lexicon entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lexicon entry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const wordColumns = `
    id, lemma, lemma_normalized, part_of_speech, status, gloss,
    genitive, gender, declension, principal_parts, conjugation,
    frequency_rank, level, is_fundamental, created_at, updated_at`

const getByIDSQL = `
SELECT` + wordColumns + `
FROM lexicon_entries
WHERE id = $1`

const getByIDsSQL = `
SELECT` + wordColumns + `
FROM lexicon_entries
WHERE id = ANY($1::bigint[])
ORDER BY id`

// findCandidatesSQL matches entries whose own lemma key, or any indexed
// inflected form, equals one of the given keys. Ordered by id so the
// resolver's lowest-id tie-break needs no re-sort.
const findCandidatesSQL = `
SELECT DISTINCT` + wordColumns + `
FROM lexicon_entries
WHERE lemma_normalized = ANY($1::text[])
   OR id IN (
        SELECT entry_id FROM inflected_forms WHERE form_normalized = ANY($1::text[])
   )
ORDER BY id`

const insertSQL = `
INSERT INTO lexicon_entries (
    lemma, lemma_normalized, part_of_speech, status, gloss,
    genitive, gender, declension, principal_parts, conjugation,
    frequency_rank, level, is_fundamental, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING` + wordColumns

const updateSQL = `
UPDATE lexicon_entries SET
    lemma = $2, lemma_normalized = $3, part_of_speech = $4, status = $5,
    gloss = $6, genitive = $7, gender = $8, declension = $9,
    principal_parts = $10, conjugation = $11, frequency_rank = $12,
    level = $13, is_fundamental = $14, updated_at = $15
WHERE id = $1
RETURNING` + wordColumns

const updateStatusSQL = `
UPDATE lexicon_entries SET status = $2, updated_at = now() WHERE id = $1`

const deleteSQL = `
DELETE FROM lexicon_entries WHERE id = $1`

// duplicateGroupsSQL returns every entry belonging to a (normalized lemma,
// POS) group with more than one member, ordered so rows of one group are
// adjacent and id-ascending.
const duplicateGroupsSQL = `
SELECT` + wordColumns + `
FROM lexicon_entries
WHERE (lemma_normalized, part_of_speech) IN (
    SELECT lemma_normalized, part_of_speech
    FROM lexicon_entries
    GROUP BY lemma_normalized, part_of_speech
    HAVING count(*) > 1
)
ORDER BY lemma_normalized, part_of_speech, id`

// recountFrequencySQL derives frequency_rank from inbound token link counts:
// the most-linked entry gets rank 1.
const recountFrequencySQL = `
UPDATE lexicon_entries le SET frequency_rank = ranked.rank, updated_at = now()
FROM (
    SELECT entry_id, RANK() OVER (ORDER BY count(*) DESC) AS rank
    FROM token_links
    WHERE entry_id IS NOT NULL
    GROUP BY entry_id
) ranked
WHERE le.id = ranked.entry_id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a lexicon entry by id. Returns domain.ErrNotFound if missing.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)
	w, err := scanWordRow(row)
	if err != nil {
		return nil, postgres.MapError(err, "lexicon_entry", id)
	}

	return &w, nil
}

// GetByIDs returns entries for the given ids, ordered by id. Missing ids are
// silently absent from the result.
func (r *Repo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Word, error) {
	if len(ids) == 0 {
		return []domain.Word{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("get lexicon entries by ids: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// FindCandidates returns every entry reachable from the given normalized
// keys, either through its lemma key or through the inflected-form index.
// Ordered by id ascending.
func (r *Repo) FindCandidates(ctx context.Context, keys []string) ([]domain.Word, error) {
	if len(keys) == 0 {
		return []domain.Word{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, findCandidatesSQL, keys)
	if err != nil {
		return nil, fmt.Errorf("find lexicon candidates: %w", err)
	}
	defer rows.Close()

	return scanWords(rows)
}

// Find returns entries matching the curation filter plus a total count.
func (r *Repo) Find(ctx context.Context, filter domain.WordFilter) ([]domain.Word, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	base := sq.Select().From("lexicon_entries").PlaceholderFormat(sq.Dollar)
	base = applyFilter(base, filter)

	countSQL, countArgs, err := base.Column("count(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lexicon entries: %w", err)
	}

	listBuilder := applyFilter(
		sq.Select(
			"id", "lemma", "lemma_normalized", "part_of_speech", "status", "gloss",
			"genitive", "gender", "declension", "principal_parts", "conjugation",
			"frequency_rank", "level", "is_fundamental", "created_at", "updated_at",
		).From("lexicon_entries").PlaceholderFormat(sq.Dollar),
		filter,
	)
	listBuilder = applySort(listBuilder, filter)
	if filter.Limit > 0 {
		listBuilder = listBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		listBuilder = listBuilder.Offset(uint64(filter.Offset))
	}

	listSQL, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := querier.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lexicon entries: %w", err)
	}
	defer rows.Close()

	words, err := scanWords(rows)
	if err != nil {
		return nil, 0, err
	}

	return words, total, nil
}

// DuplicateGroups returns merge-candidate groups: entries sharing a
// (normalized lemma, POS) pair, grouped, each group ordered by id.
func (r *Repo) DuplicateGroups(ctx context.Context) ([][]domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, duplicateGroupsSQL)
	if err != nil {
		return nil, fmt.Errorf("find duplicate groups: %w", err)
	}
	defer rows.Close()

	words, err := scanWords(rows)
	if err != nil {
		return nil, err
	}

	var groups [][]domain.Word
	for i, w := range words {
		if i > 0 && sameGroup(words[i-1], w) {
			groups[len(groups)-1] = append(groups[len(groups)-1], w)
			continue
		}
		groups = append(groups, []domain.Word{w})
	}

	return groups, nil
}

func sameGroup(a, b domain.Word) bool {
	return a.LemmaNormalized == b.LemmaNormalized && a.PartOfSpeech == b.PartOfSpeech
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new lexicon entry and returns it with the id populated.
// A concurrent creation of the same provisional (key, POS) pair surfaces as
// domain.ErrAlreadyExists via the partial unique index; callers retry their
// lookup in that case.
func (r *Repo) Create(ctx context.Context, w *domain.Word) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	row := querier.QueryRow(ctx, insertSQL,
		w.Lemma, w.LemmaNormalized, string(w.PartOfSpeech), string(w.Status),
		w.Gloss, w.Genitive, w.Gender, w.Declension, w.PrincipalParts,
		w.Conjugation, w.FrequencyRank, w.Level, w.IsFundamental,
		w.CreatedAt, w.UpdatedAt,
	)

	created, err := scanWordRow(row)
	if err != nil {
		return nil, postgres.MapError(err, "lexicon_entry", 0)
	}

	return &created, nil
}

// Update rewrites every mutable field of the entry (used for merged
// survivors). Returns domain.ErrNotFound for a missing id.
func (r *Repo) Update(ctx context.Context, w *domain.Word) (*domain.Word, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, updateSQL,
		w.ID, w.Lemma, w.LemmaNormalized, string(w.PartOfSpeech), string(w.Status),
		w.Gloss, w.Genitive, w.Gender, w.Declension, w.PrincipalParts,
		w.Conjugation, w.FrequencyRank, w.Level, w.IsFundamental, time.Now().UTC(),
	)

	updated, err := scanWordRow(row)
	if err != nil {
		return nil, postgres.MapError(err, "lexicon_entry", w.ID)
	}

	return &updated, nil
}

// UpdateStatus changes only the lifecycle status of an entry.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status domain.EntryStatus) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateStatusSQL, id, string(status))
	if err != nil {
		return postgres.MapError(err, "lexicon_entry", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lexicon_entry %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an entry. Fails with a foreign key violation (mapped to
// domain.ErrNotFound by convention) if forms or links still reference it —
// the reconciler must re-point referents first.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "lexicon_entry", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lexicon_entry %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// RecountFrequencyRanks recomputes frequency_rank for every linked entry
// from current token link counts. Returns the number of entries updated.
func (r *Repo) RecountFrequencyRanks(ctx context.Context) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, recountFrequencySQL)
	if err != nil {
		return 0, fmt.Errorf("recount frequency ranks: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Filter helpers
// ---------------------------------------------------------------------------

func applyFilter(b sq.SelectBuilder, f domain.WordFilter) sq.SelectBuilder {
	if f.Search != nil && *f.Search != "" {
		b = b.Where(sq.Eq{"lemma_normalized": domain.NormalizeLatin(*f.Search)})
	}
	if f.PartOfSpeech != nil {
		b = b.Where(sq.Eq{"part_of_speech": string(*f.PartOfSpeech)})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.MissingGloss != nil {
		if *f.MissingGloss {
			b = b.Where(sq.Or{
				sq.Eq{"gloss": nil},
				sq.Eq{"gloss": ""},
				sq.Eq{"gloss": domain.PlaceholderGloss},
			})
		} else {
			b = b.Where(sq.And{
				sq.NotEq{"gloss": nil},
				sq.NotEq{"gloss": ""},
				sq.NotEq{"gloss": domain.PlaceholderGloss},
			})
		}
	}
	if f.Fundamental != nil {
		b = b.Where(sq.Eq{"is_fundamental": *f.Fundamental})
	}
	return b
}

func applySort(b sq.SelectBuilder, f domain.WordFilter) sq.SelectBuilder {
	col := "id"
	switch f.SortBy {
	case "lemma":
		col = "lemma_normalized"
	case "frequency":
		col = "frequency_rank"
	case "created_at":
		col = "created_at"
	}
	dir := "ASC"
	if f.SortOrder == "desc" {
		dir = "DESC"
	}
	return b.OrderBy(col + " " + dir + ", id ASC")
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanWords(rows pgx.Rows) ([]domain.Word, error) {
	var words []domain.Word
	for rows.Next() {
		w, err := scanWordRow(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if words == nil {
		words = []domain.Word{}
	}

	return words, nil
}

func scanWordRow(row pgx.Row) (domain.Word, error) {
	var (
		w             domain.Word
		pos           string
		status        string
		gloss         pgtype.Text
		genitive      pgtype.Text
		gender        pgtype.Text
		declension    pgtype.Text
		principal     pgtype.Text
		conjugation   pgtype.Text
		frequencyRank pgtype.Int4
		level         pgtype.Int4
	)

	if err := row.Scan(
		&w.ID, &w.Lemma, &w.LemmaNormalized, &pos, &status, &gloss,
		&genitive, &gender, &declension, &principal, &conjugation,
		&frequencyRank, &level, &w.IsFundamental, &w.CreatedAt, &w.UpdatedAt,
	); err != nil {
		return domain.Word{}, err
	}

	w.PartOfSpeech = domain.PartOfSpeech(pos)
	w.Status = domain.EntryStatus(status)
	w.Gloss = textPtr(gloss)
	w.Genitive = textPtr(genitive)
	w.Gender = textPtr(gender)
	w.Declension = textPtr(declension)
	w.PrincipalParts = textPtr(principal)
	w.Conjugation = textPtr(conjugation)
	w.FrequencyRank = int4Ptr(frequencyRank)
	w.Level = int4Ptr(level)

	return w, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func int4Ptr(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}
