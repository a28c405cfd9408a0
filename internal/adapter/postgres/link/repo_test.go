package link_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verba-app/verba-backend/internal/adapter/postgres/link"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/testhelper"
	"github.com/verba-app/verba-backend/internal/domain"
)

func newRepo(t *testing.T) (*link.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return link.New(pool), pool
}

// ---------------------------------------------------------------------------
// ReplaceForText tests
// ---------------------------------------------------------------------------

func TestRepo_ReplaceForText(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	word := testhelper.SeedWord(t, pool)

	role := domain.RoleSubject
	first := []domain.TokenLink{
		{WordID: &word.ID, SentenceNumber: 1, PositionInSentence: 1, Form: "Gallia",
			Morphology: map[string]string{"Case": "Nom"}, SyntacticRole: &role},
		{SentenceNumber: 1, PositionInSentence: 2, Form: "est",
			Morphology: map[string]string{}},
		{SentenceNumber: 1, PositionInSentence: 3, Form: ".", IsPunct: true},
	}

	n, err := repo.ReplaceForText(ctx, text.ID, first)
	if err != nil {
		t.Fatalf("ReplaceForText: unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 links inserted, got %d", n)
	}

	// Re-analysis swaps the full set.
	second := []domain.TokenLink{
		{WordID: &word.ID, SentenceNumber: 1, PositionInSentence: 1, Form: "Gallia"},
	}
	if _, err := repo.ReplaceForText(ctx, text.ID, second); err != nil {
		t.Fatalf("second ReplaceForText: unexpected error: %v", err)
	}

	got, err := repo.GetByText(ctx, text.ID)
	if err != nil {
		t.Fatalf("GetByText: unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected old links replaced, got %d rows", len(got))
	}
	if got[0].Form != "Gallia" {
		t.Errorf("Form mismatch: got %q", got[0].Form)
	}
	if got[0].WordID == nil || *got[0].WordID != word.ID {
		t.Errorf("WordID mismatch: got %v, want %d", got[0].WordID, word.ID)
	}
}

// ---------------------------------------------------------------------------
// GetAt (tooltip) tests
// ---------------------------------------------------------------------------

func TestRepo_GetAt(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	word := testhelper.SeedWord(t, pool)
	testhelper.SeedLink(t, pool, text.ID, &word.ID, 2, 4, "rosam")

	got, err := repo.GetAt(ctx, domain.TokenRef{TextID: text.ID, SentenceNumber: 2, PositionInSentence: 4})
	if err != nil {
		t.Fatalf("GetAt: unexpected error: %v", err)
	}
	if got.Link.Form != "rosam" {
		t.Errorf("Form mismatch: got %q", got.Link.Form)
	}
	if got.Lemma == nil || *got.Lemma != word.Lemma {
		t.Errorf("Lemma mismatch: got %v, want %q", got.Lemma, word.Lemma)
	}
	if got.Gloss == nil || *got.Gloss != *word.Gloss {
		t.Errorf("Gloss mismatch: got %v, want %v", got.Gloss, word.Gloss)
	}
}

func TestRepo_GetAt_OrphanLink(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	testhelper.SeedLink(t, pool, text.ID, nil, 1, 1, "ignotum")

	got, err := repo.GetAt(ctx, domain.TokenRef{TextID: text.ID, SentenceNumber: 1, PositionInSentence: 1})
	if err != nil {
		t.Fatalf("GetAt: unexpected error: %v", err)
	}
	if got.WordID != nil || got.Lemma != nil || got.Gloss != nil {
		t.Errorf("expected empty entry side for orphan link, got %+v", got)
	}
}

func TestRepo_GetAt_NotFound(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)

	text := testhelper.SeedText(t, pool)
	_, err := repo.GetAt(context.Background(), domain.TokenRef{TextID: text.ID, SentenceNumber: 99, PositionInSentence: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Repoint / orphan handling tests
// ---------------------------------------------------------------------------

func TestRepo_Repoint(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	survivor := testhelper.SeedWord(t, pool)
	victim := testhelper.SeedWord(t, pool)

	testhelper.SeedLink(t, pool, text.ID, &victim.ID, 1, 1, "arma")
	testhelper.SeedLink(t, pool, text.ID, &victim.ID, 1, 2, "uirumque")
	testhelper.SeedLink(t, pool, text.ID, &survivor.ID, 1, 3, "cano")

	moved, err := repo.Repoint(ctx, victim.ID, survivor.ID)
	if err != nil {
		t.Fatalf("Repoint: unexpected error: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 links repointed, got %d", moved)
	}

	count, err := repo.CountByEntry(ctx, survivor.ID)
	if err != nil {
		t.Fatalf("CountByEntry: unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected survivor to hold 3 links, got %d", count)
	}
}

func TestRepo_Orphans_AndAttachEntry(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	word := testhelper.SeedWord(t, pool)
	orphan := testhelper.SeedLink(t, pool, text.ID, nil, 3, 1, "lupus")

	orphans, err := repo.Orphans(ctx)
	if err != nil {
		t.Fatalf("Orphans: unexpected error: %v", err)
	}
	if !containsLink(orphans, orphan.ID) {
		t.Fatalf("expected link %d in orphan listing", orphan.ID)
	}

	if err := repo.AttachEntry(ctx, orphan.ID, word.ID); err != nil {
		t.Fatalf("AttachEntry: unexpected error: %v", err)
	}

	orphans, err = repo.Orphans(ctx)
	if err != nil {
		t.Fatalf("Orphans (after attach): unexpected error: %v", err)
	}
	if containsLink(orphans, orphan.ID) {
		t.Error("expected attached link to leave the orphan listing")
	}
}

func TestRepo_FlagNeedsReview(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	text := testhelper.SeedText(t, pool)
	l := testhelper.SeedLink(t, pool, text.ID, nil, 1, 1, "nescio")

	if err := repo.FlagNeedsReview(ctx, l.ID); err != nil {
		t.Fatalf("FlagNeedsReview: unexpected error: %v", err)
	}

	got, err := repo.GetByText(ctx, text.ID)
	if err != nil {
		t.Fatalf("GetByText: unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].NeedsReview {
		t.Errorf("expected link flagged for review, got %+v", got)
	}
}

func containsLink(links []domain.TokenLink, id int64) bool {
	for _, l := range links {
		if l.ID == id {
			return true
		}
	}
	return false
}
