// Package link implements the token link repository using PostgreSQL.
// One row per token occurrence in a source text; re-ingestion replaces a
// text's rows wholesale, inside the caller's transaction.
package link

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/domain"
)

// Repo provides token link persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new token link repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const linkColumns = `
    id, text_id, entry_id, sentence_number, position_in_sentence,
    form, morphology, syntactic_role, is_punct, needs_review, created_at`

const deleteByTextSQL = `
DELETE FROM token_links WHERE text_id = $1`

const insertSQL = `
INSERT INTO token_links (
    text_id, entry_id, sentence_number, position_in_sentence,
    form, morphology, syntactic_role, is_punct, needs_review
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const getByTextSQL = `
SELECT` + linkColumns + `
FROM token_links
WHERE text_id = $1
ORDER BY sentence_number, position_in_sentence`

const getAtSQL = `
SELECT
    l.id, l.text_id, l.entry_id, l.sentence_number, l.position_in_sentence,
    l.form, l.morphology, l.syntactic_role, l.is_punct, l.needs_review, l.created_at,
    w.id, w.lemma, w.part_of_speech, w.gloss
FROM token_links l
LEFT JOIN lexicon_entries w ON l.entry_id = w.id
WHERE l.text_id = $1 AND l.sentence_number = $2 AND l.position_in_sentence = $3`

const repointSQL = `
UPDATE token_links SET entry_id = $2 WHERE entry_id = $1`

const orphansSQL = `
SELECT` + linkColumns + `
FROM token_links
WHERE entry_id IS NULL AND NOT is_punct
ORDER BY text_id, sentence_number, position_in_sentence`

const attachEntrySQL = `
UPDATE token_links SET entry_id = $2, needs_review = FALSE WHERE id = $1`

const flagNeedsReviewSQL = `
UPDATE token_links SET needs_review = TRUE WHERE id = $1`

const countByEntrySQL = `
SELECT count(*) FROM token_links WHERE entry_id = $1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// ReplaceForText atomically swaps a text's link set: existing rows are
// deleted, then the new rows inserted in one batch. Callers run this inside
// a transaction so re-analysis is all-or-nothing.
func (r *Repo) ReplaceForText(ctx context.Context, textID int64, links []domain.TokenLink) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteByTextSQL, textID); err != nil {
		return 0, postgres.MapError(err, "token_link", textID)
	}

	if len(links) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range links {
		var role *string
		if l.SyntacticRole != nil {
			s := string(*l.SyntacticRole)
			role = &s
		}
		batch.Queue(insertSQL,
			textID, l.WordID, l.SentenceNumber, l.PositionInSentence,
			l.Form, l.Morphology, role, l.IsPunct, l.NeedsReview,
		)
	}

	results := querier.SendBatch(ctx, batch)
	defer results.Close()

	for i := range links {
		if _, err := results.Exec(); err != nil {
			return i, postgres.MapError(err, "token_link", textID)
		}
	}

	return len(links), nil
}

// Repoint rewrites every link of victimID to reference survivorID.
// Returns the number of rows rewritten.
func (r *Repo) Repoint(ctx context.Context, victimID, survivorID int64) (int64, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, repointSQL, victimID, survivorID)
	if err != nil {
		return 0, postgres.MapError(err, "token_link", victimID)
	}

	return tag.RowsAffected(), nil
}

// AttachEntry points an orphan link at an entry and clears its review flag.
func (r *Repo) AttachEntry(ctx context.Context, linkID, entryID int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, attachEntrySQL, linkID, entryID)
	if err != nil {
		return postgres.MapError(err, "token_link", linkID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token_link %d: %w", linkID, domain.ErrNotFound)
	}

	return nil
}

// FlagNeedsReview marks a link for human curation. Used when orphan repair
// finds no plausible entry.
func (r *Repo) FlagNeedsReview(ctx context.Context, linkID int64) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, flagNeedsReviewSQL, linkID)
	if err != nil {
		return postgres.MapError(err, "token_link", linkID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("token_link %d: %w", linkID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByText returns a text's links in reading order.
func (r *Repo) GetByText(ctx context.Context, textID int64) ([]domain.TokenLink, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByTextSQL, textID)
	if err != nil {
		return nil, fmt.Errorf("get token links by text: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// GetAt returns the tooltip read-model for one token position: the link
// joined with its resolved entry (lemma, POS, gloss), if any.
func (r *Repo) GetAt(ctx context.Context, ref domain.TokenRef) (*domain.TokenGloss, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getAtSQL, ref.TextID, ref.SentenceNumber, ref.PositionInSentence)

	var (
		g      domain.TokenGloss
		wordID pgtype.Int8
		lemma  pgtype.Text
		pos    pgtype.Text
		gloss  pgtype.Text
	)
	l, err := scanLinkInto(row, &wordID, &lemma, &pos, &gloss)
	if err != nil {
		return nil, postgres.MapError(err, "token_link", ref.TextID)
	}
	g.Link = l

	if wordID.Valid {
		id := wordID.Int64
		g.WordID = &id
	}
	if lemma.Valid {
		s := lemma.String
		g.Lemma = &s
	}
	if pos.Valid {
		p := domain.PartOfSpeech(pos.String)
		g.PartOfSpeech = &p
	}
	if gloss.Valid {
		s := gloss.String
		g.Gloss = &s
	}

	return &g, nil
}

// Orphans returns non-punctuation links with a null entry reference, the
// reconciler's repair queue.
func (r *Repo) Orphans(ctx context.Context) ([]domain.TokenLink, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, orphansSQL)
	if err != nil {
		return nil, fmt.Errorf("find orphan links: %w", err)
	}
	defer rows.Close()

	return scanLinks(rows)
}

// CountByEntry returns the number of links referencing an entry.
func (r *Repo) CountByEntry(ctx context.Context, entryID int64) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByEntrySQL, entryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count token links: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanLinks(rows pgx.Rows) ([]domain.TokenLink, error) {
	var links []domain.TokenLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if links == nil {
		links = []domain.TokenLink{}
	}

	return links, nil
}

func scanLink(row pgx.Row) (domain.TokenLink, error) {
	var (
		l       domain.TokenLink
		entryID pgtype.Int8
		morph   map[string]string
		role    pgtype.Text
	)

	if err := row.Scan(
		&l.ID, &l.TextID, &entryID, &l.SentenceNumber, &l.PositionInSentence,
		&l.Form, &morph, &role, &l.IsPunct, &l.NeedsReview, &l.CreatedAt,
	); err != nil {
		return domain.TokenLink{}, err
	}

	if entryID.Valid {
		id := entryID.Int64
		l.WordID = &id
	}
	l.Morphology = morph
	if role.Valid {
		r := domain.SyntaxRole(role.String)
		l.SyntacticRole = &r
	}

	return l, nil
}

func scanLinkInto(row pgx.Row, extras ...any) (domain.TokenLink, error) {
	var (
		l       domain.TokenLink
		entryID pgtype.Int8
		morph   map[string]string
		role    pgtype.Text
	)

	dest := []any{
		&l.ID, &l.TextID, &entryID, &l.SentenceNumber, &l.PositionInSentence,
		&l.Form, &morph, &role, &l.IsPunct, &l.NeedsReview, &l.CreatedAt,
	}
	dest = append(dest, extras...)

	if err := row.Scan(dest...); err != nil {
		return domain.TokenLink{}, err
	}

	if entryID.Valid {
		id := entryID.Int64
		l.WordID = &id
	}
	l.Morphology = morph
	if role.Valid {
		r := domain.SyntaxRole(role.String)
		l.SyntacticRole = &r
	}

	return l, nil
}
