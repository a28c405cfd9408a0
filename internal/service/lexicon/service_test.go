package lexicon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/verba-app/verba-backend/internal/domain"
)

type mockWordRepo struct {
	findCandidatesFn func(ctx context.Context, keys []string) ([]domain.Word, error)
	createFn         func(ctx context.Context, w *domain.Word) (*domain.Word, error)
}

func (m *mockWordRepo) FindCandidates(ctx context.Context, keys []string) ([]domain.Word, error) {
	return m.findCandidatesFn(ctx, keys)
}

func (m *mockWordRepo) Create(ctx context.Context, w *domain.Word) (*domain.Word, error) {
	return m.createFn(ctx, w)
}

type mockFormRepo struct {
	ensureFn func(ctx context.Context, entryID int64, form, normalized string, morphology *string) (bool, error)
}

func (m *mockFormRepo) Ensure(ctx context.Context, entryID int64, form, normalized string, morphology *string) (bool, error) {
	if m.ensureFn == nil {
		return true, nil
	}
	return m.ensureFn(ctx, entryID, form, normalized, morphology)
}

func newTestService(words *mockWordRepo, forms *mockFormRepo) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(log, words, forms, 3)
}

func strPtr(s string) *string { return &s }

func activeNoun(id int64, lemma string) domain.Word {
	return domain.Word{
		ID:              id,
		Lemma:           lemma,
		LemmaNormalized: domain.NormalizeLatin(lemma),
		PartOfSpeech:    domain.PartOfSpeechNoun,
		Status:          domain.EntryStatusActive,
		Gloss:           strPtr("gloss"),
	}
}

func TestResolve_SingleCandidate(t *testing.T) {
	t.Parallel()

	rosa := activeNoun(7, "rosa")
	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, keys []string) ([]domain.Word, error) {
			// lemma hint and surface normalize to distinct keys
			if len(keys) != 2 {
				t.Errorf("expected 2 lookup keys, got %v", keys)
			}
			return []domain.Word{rosa}, nil
		},
	}

	var formEntry int64
	var formNorm string
	forms := &mockFormRepo{
		ensureFn: func(_ context.Context, entryID int64, form, normalized string, _ *string) (bool, error) {
			formEntry, formNorm = entryID, normalized
			return true, nil
		},
	}

	res, err := newTestService(words, forms).Resolve(context.Background(), ResolveInput{
		Surface:   "rosam",
		LemmaHint: "rosa",
		POS:       domain.PartOfSpeechNoun,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Word.ID != 7 || res.Created {
		t.Errorf("expected existing entry 7, got %+v", res)
	}
	if res.Diagnostic != nil {
		t.Errorf("unexpected diagnostic: %+v", res.Diagnostic)
	}
	if formEntry != 7 || formNorm != "rosam" {
		t.Errorf("expected surface registered under entry 7, got (%d, %q)", formEntry, formNorm)
	}
}

func TestResolve_MissCreatesProvisional(t *testing.T) {
	t.Parallel()

	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, w *domain.Word) (*domain.Word, error) {
			if w.Status != domain.EntryStatusProvisional {
				t.Errorf("expected provisional status, got %s", w.Status)
			}
			if w.Gloss == nil || *w.Gloss != domain.PlaceholderGloss {
				t.Errorf("expected placeholder gloss, got %v", w.Gloss)
			}
			if w.LemmaNormalized != "nouum" {
				t.Errorf("expected normalized lemma nouum, got %q", w.LemmaNormalized)
			}
			created := *w
			created.ID = 42
			return &created, nil
		},
	}

	res, err := newTestService(words, &mockFormRepo{}).Resolve(context.Background(), ResolveInput{
		Surface:   "novum",
		LemmaHint: "novum",
		POS:       domain.PartOfSpeechAdjective,
		Features:  map[string]string{"Gender": "Neut"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || res.Word.ID != 42 {
		t.Errorf("expected created entry 42, got %+v", res)
	}
	if res.Word.Gender == nil || *res.Word.Gender != "n" {
		t.Errorf("expected gender seeded from features, got %v", res.Word.Gender)
	}
}

func TestResolve_LostRaceRetriesLookup(t *testing.T) {
	t.Parallel()

	winner := activeNoun(9, "amicus")
	winner.Status = domain.EntryStatusProvisional
	calls := 0
	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return []domain.Word{winner}, nil
		},
		createFn: func(_ context.Context, _ *domain.Word) (*domain.Word, error) {
			return nil, fmt.Errorf("lexicon_entry: %w", domain.ErrAlreadyExists)
		},
	}

	res, err := newTestService(words, &mockFormRepo{}).Resolve(context.Background(), ResolveInput{
		Surface:   "amicus",
		LemmaHint: "amicus",
		POS:       domain.PartOfSpeechNoun,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Word.ID != 9 || res.Created {
		t.Errorf("expected attachment to race winner, got %+v", res)
	}
	if calls != 2 {
		t.Errorf("expected 2 lookups, got %d", calls)
	}
}

func TestResolve_RetriesExhausted(t *testing.T) {
	t.Parallel()

	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, _ *domain.Word) (*domain.Word, error) {
			return nil, domain.ErrAlreadyExists
		},
	}

	_, err := newTestService(words, &mockFormRepo{}).Resolve(context.Background(), ResolveInput{
		Surface: "x", LemmaHint: "x", POS: domain.PartOfSpeechNoun,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict after exhausted retries, got %v", err)
	}
}

func TestResolve_POSIncompatibleCreatesNew(t *testing.T) {
	t.Parallel()

	// A proper noun never attaches to the common-noun entry of the same key.
	common := activeNoun(3, "roma")
	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			return []domain.Word{common}, nil
		},
		createFn: func(_ context.Context, w *domain.Word) (*domain.Word, error) {
			created := *w
			created.ID = 11
			return &created, nil
		},
	}

	res, err := newTestService(words, &mockFormRepo{}).Resolve(context.Background(), ResolveInput{
		Surface:   "Roma",
		LemmaHint: "Roma",
		POS:       domain.PartOfSpeechProperNoun,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Created || res.Word.ID != 11 {
		t.Errorf("expected new proper-noun entry, got %+v", res)
	}
}

func TestResolve_TieBreakLadder(t *testing.T) {
	t.Parallel()

	fem := "f"
	masc := "m"
	tests := []struct {
		name       string
		candidates []domain.Word
		input      ResolveInput
		wantID     int64
		wantDiag   bool
	}{
		{
			name: "exact POS wins",
			candidates: []domain.Word{
				{ID: 1, PartOfSpeech: domain.PartOfSpeechVerb, Status: domain.EntryStatusActive},
				{ID: 2, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusProvisional},
			},
			input:  ResolveInput{Surface: "venio", LemmaHint: "venio", POS: domain.PartOfSpeechNoun},
			wantID: 2,
		},
		{
			name: "morph class narrows homonyms",
			candidates: []domain.Word{
				{ID: 1, PartOfSpeech: domain.PartOfSpeechNoun, Gender: &masc, Status: domain.EntryStatusActive},
				{ID: 2, PartOfSpeech: domain.PartOfSpeechNoun, Gender: &fem, Status: domain.EntryStatusActive},
			},
			input: ResolveInput{
				Surface: "canis", LemmaHint: "canis", POS: domain.PartOfSpeechNoun,
				Features: map[string]string{"Gender": "Fem"},
			},
			wantID: 2,
		},
		{
			name: "curated status beats provisional",
			candidates: []domain.Word{
				{ID: 1, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusProvisional},
				{ID: 2, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusActive},
			},
			input:  ResolveInput{Surface: "lupus", LemmaHint: "lupus", POS: domain.PartOfSpeechNoun},
			wantID: 2,
		},
		{
			name: "full tie falls to lowest id with diagnostic",
			candidates: []domain.Word{
				{ID: 5, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusActive},
				{ID: 3, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusActive},
			},
			input:    ResolveInput{Surface: "malus", LemmaHint: "malus", POS: domain.PartOfSpeechNoun},
			wantID:   3,
			wantDiag: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			words := &mockWordRepo{
				findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
					return tt.candidates, nil
				},
			}

			res, err := newTestService(words, &mockFormRepo{}).Resolve(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Word.ID != tt.wantID {
				t.Errorf("chose entry %d, want %d", res.Word.ID, tt.wantID)
			}
			if (res.Diagnostic != nil) != tt.wantDiag {
				t.Errorf("diagnostic = %+v, wantDiag = %v", res.Diagnostic, tt.wantDiag)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	candidates := []domain.Word{
		{ID: 8, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusActive},
		{ID: 4, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusActive},
	}
	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			cp := make([]domain.Word, len(candidates))
			copy(cp, candidates)
			return cp, nil
		},
	}
	svc := newTestService(words, &mockFormRepo{})
	in := ResolveInput{Surface: "idem", LemmaHint: "idem", POS: domain.PartOfSpeechNoun}

	for i := 0; i < 10; i++ {
		res, err := svc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Word.ID != 4 {
			t.Fatalf("run %d chose %d, want 4", i, res.Word.ID)
		}
	}
}

func TestResolveSurface_NoCreation(t *testing.T) {
	t.Parallel()

	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, keys []string) ([]domain.Word, error) {
			if len(keys) != 1 || keys[0] != "uitam" {
				t.Errorf("expected surface-only key, got %v", keys)
			}
			return nil, nil
		},
		createFn: func(_ context.Context, _ *domain.Word) (*domain.Word, error) {
			t.Fatal("ResolveSurface must never create entries")
			return nil, nil
		},
	}

	_, err := newTestService(words, &mockFormRepo{}).ResolveSurface(context.Background(), "vitam", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveSurface_PicksByStatusThenID(t *testing.T) {
	t.Parallel()

	words := &mockWordRepo{
		findCandidatesFn: func(_ context.Context, _ []string) ([]domain.Word, error) {
			return []domain.Word{
				{ID: 2, PartOfSpeech: domain.PartOfSpeechNoun, Status: domain.EntryStatusProvisional},
				{ID: 6, PartOfSpeech: domain.PartOfSpeechVerb, Status: domain.EntryStatusActive},
			}, nil
		},
	}

	res, err := newTestService(words, &mockFormRepo{}).ResolveSurface(context.Background(), "uenio", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Word.ID != 6 {
		t.Errorf("expected curated entry 6, got %d", res.Word.ID)
	}
}
