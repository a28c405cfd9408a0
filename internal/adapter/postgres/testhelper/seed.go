package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verba-app/verba-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedWord creates an active lexicon entry with a unique lemma.
// Returns the stored domain.Word.
func SeedWord(t *testing.T, pool *pgxpool.Pool) domain.Word {
	t.Helper()

	return SeedWordWith(t, pool, "lemma"+uniqueSuffix(), domain.PartOfSpeechNoun, domain.EntryStatusActive)
}

// SeedWordWith creates a lexicon entry with the given lemma, POS, and status.
func SeedWordWith(t *testing.T, pool *pgxpool.Pool, lemma string, pos domain.PartOfSpeech, status domain.EntryStatus) domain.Word {
	t.Helper()
	ctx := context.Background()

	gloss := "test gloss " + uniqueSuffix()
	w := domain.Word{
		Lemma:           lemma,
		LemmaNormalized: domain.NormalizeLatin(lemma),
		PartOfSpeech:    pos,
		Status:          status,
		Gloss:           &gloss,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO lexicon_entries (lemma, lemma_normalized, part_of_speech, status, gloss)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		w.Lemma, w.LemmaNormalized, string(w.PartOfSpeech), string(w.Status), w.Gloss,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedWordWith insert lexicon_entry: %v", err)
	}

	return w
}

// SeedForm attaches an inflected form to an entry.
func SeedForm(t *testing.T, pool *pgxpool.Pool, entryID int64, form string) domain.InflectedForm {
	t.Helper()
	ctx := context.Background()

	f := domain.InflectedForm{
		WordID:         entryID,
		Form:           form,
		FormNormalized: domain.NormalizeLatin(form),
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO inflected_forms (entry_id, form, form_normalized)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		f.WordID, f.Form, f.FormNormalized,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedForm insert inflected_form: %v", err)
	}

	return f
}

// SeedText creates a source text with generated title and content.
func SeedText(t *testing.T, pool *pgxpool.Pool) domain.SourceText {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	st := domain.SourceText{
		Title:      "Test Text " + suffix,
		Content:    "Gallia est omnis divisa in partes tres.",
		Difficulty: 1,
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO source_texts (title, content, difficulty)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		st.Title, st.Content, st.Difficulty,
	).Scan(&st.ID, &st.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedText insert source_text: %v", err)
	}

	return st
}

// SeedLink creates a token link at the given sentence position. entryID may
// be nil to produce an orphan link.
func SeedLink(t *testing.T, pool *pgxpool.Pool, textID int64, entryID *int64, sentence, position int, form string) domain.TokenLink {
	t.Helper()
	ctx := context.Background()

	l := domain.TokenLink{
		TextID:             textID,
		WordID:             entryID,
		SentenceNumber:     sentence,
		PositionInSentence: position,
		Form:               form,
		Morphology:         map[string]string{"Case": "Nom"},
	}

	err := pool.QueryRow(ctx,
		`INSERT INTO token_links (text_id, entry_id, sentence_number, position_in_sentence, form, morphology, is_punct, needs_review)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE)
		 RETURNING id, created_at`,
		l.TextID, l.WordID, l.SentenceNumber, l.PositionInSentence, l.Form, l.Morphology,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedLink insert token_link: %v", err)
	}

	return l
}

// Truncate wipes the given tables between tests that need a clean slate.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range tables {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("testhelper: truncate %s: %v", table, err)
		}
	}
}
