package lexicon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/verba-app/verba-backend/internal/domain"
)

// Resolve finds the lexicon entry for an analyzed token, creating a
// provisional one when nothing matches. Never fails on a miss: the worst
// case is a provisional entry a human must later curate. A lost race on
// concurrent creation of the same key is retried by re-running the lookup.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*Resolution, error) {
	keys := normalizedKeys(in.LemmaHint, in.Surface)
	if len(keys) == 0 {
		return nil, fmt.Errorf("resolve %q: %w", in.Surface, domain.ErrValidation)
	}

	features := foldFeatureKeys(in.Features)

	var res *Resolution
	for attempt := 0; attempt < s.retries; attempt++ {
		candidates, err := s.words.FindCandidates(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", in.Surface, err)
		}

		compatible := filterPOS(candidates, in.POS)
		if len(compatible) > 0 {
			word, diag := pickCandidate(compatible, in, features)
			res = &Resolution{Word: word, Diagnostic: diag}
			break
		}

		created, err := s.createProvisional(ctx, in, features)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another ingestion created the entry between our lookup and
			// our insert. Re-run the lookup and attach to the winner.
			s.log.DebugContext(ctx, "resolve retry after lost create race",
				slog.String("surface", in.Surface), slog.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", in.Surface, err)
		}

		res = &Resolution{Word: created, Created: true}
		break
	}
	if res == nil {
		return nil, fmt.Errorf("resolve %q: retries exhausted: %w", in.Surface, domain.ErrConflict)
	}

	if err := s.ensureForm(ctx, res.Word.ID, in); err != nil {
		return nil, err
	}

	if res.Diagnostic != nil {
		s.log.WarnContext(ctx, "ambiguous resolution",
			slog.String("surface", in.Surface),
			slog.String("lemma_hint", in.LemmaHint),
			slog.Int64("chosen_id", res.Diagnostic.ChosenID),
			slog.Int("candidates", len(res.Diagnostic.CandidateIDs)),
		)
	}

	return res, nil
}

func (s *Service) createProvisional(ctx context.Context, in ResolveInput, features map[string]string) (*domain.Word, error) {
	lemma := in.LemmaHint
	if lemma == "" {
		lemma = in.Surface
	}

	gloss := domain.PlaceholderGloss
	w := &domain.Word{
		Lemma:           lemma,
		LemmaNormalized: domain.NormalizeLatin(lemma),
		PartOfSpeech:    in.POS,
		Status:          domain.EntryStatusProvisional,
		Gloss:           &gloss,
	}
	if g, ok := features["gender"]; ok && g != "" {
		gender := strings.ToLower(g[:1])
		w.Gender = &gender
	}

	created, err := s.words.Create(ctx, w)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "created provisional entry",
		slog.Int64("id", created.ID),
		slog.String("lemma", created.Lemma),
		slog.String("pos", string(created.PartOfSpeech)),
	)

	return created, nil
}

// ensureForm registers the literal surface under the resolved entry so later
// surface-only lookups can find it.
func (s *Service) ensureForm(ctx context.Context, entryID int64, in ResolveInput) error {
	var morph *string
	if in.Morph != "" {
		m := in.Morph
		morph = &m
	}

	if _, err := s.forms.Ensure(ctx, entryID, in.Surface, domain.NormalizeLatin(in.Surface), morph); err != nil {
		return fmt.Errorf("resolve %q: register form: %w", in.Surface, err)
	}

	return nil
}

// pickCandidate applies the tie-break ladder: exact POS, morphological class
// agreement, curation status, then lowest id. A diagnostic is produced only
// when the id step actually had to decide.
func pickCandidate(candidates []domain.Word, in ResolveInput, features map[string]string) (*domain.Word, *Diagnostic) {
	remaining := candidates

	if narrowed := narrow(remaining, func(w domain.Word) bool { return w.PartOfSpeech == in.POS }); len(narrowed) > 0 {
		remaining = narrowed
	}
	if narrowed := narrow(remaining, func(w domain.Word) bool { return w.MorphClassMatches(features) }); len(narrowed) > 0 {
		remaining = narrowed
	}

	best := maxStatusRank(remaining)
	if narrowed := narrow(remaining, func(w domain.Word) bool { return w.Status.Rank() == best }); len(narrowed) > 0 {
		remaining = narrowed
	}

	sort.Slice(remaining, func(i, j int) bool { return remaining[i].ID < remaining[j].ID })
	chosen := remaining[0]

	if len(remaining) == 1 {
		return &chosen, nil
	}

	diag := &Diagnostic{
		Surface:   in.Surface,
		LemmaHint: in.LemmaHint,
		ChosenID:  chosen.ID,
	}
	for _, w := range remaining {
		diag.CandidateIDs = append(diag.CandidateIDs, w.ID)
	}

	return &chosen, diag
}

// filterPOS keeps candidates whose POS is compatible with the token's.
// Tags are already folded to the domain vocabulary, so compatible means
// equal; OTHER on either side matches anything, the exact-POS tie-break
// then prefers true matches. PROPER_NOUN and NOUN stay distinct entries.
func filterPOS(candidates []domain.Word, pos domain.PartOfSpeech) []domain.Word {
	var out []domain.Word
	for _, w := range candidates {
		if w.PartOfSpeech == pos || w.PartOfSpeech == domain.PartOfSpeechOther || pos == domain.PartOfSpeechOther {
			out = append(out, w)
		}
	}
	return out
}

func narrow(candidates []domain.Word, keep func(domain.Word) bool) []domain.Word {
	var out []domain.Word
	for _, w := range candidates {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func maxStatusRank(candidates []domain.Word) int {
	best := 0
	for _, w := range candidates {
		if r := w.Status.Rank(); r > best {
			best = r
		}
	}
	return best
}

// normalizedKeys returns the deduplicated non-empty normalized lookup keys.
func normalizedKeys(values ...string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, v := range values {
		key := domain.NormalizeLatin(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// foldFeatureKeys lower-cases analyzer feature names so Gender and gender
// compare equal downstream.
func foldFeatureKeys(features map[string]string) map[string]string {
	if len(features) == 0 {
		return nil
	}
	out := make(map[string]string, len(features))
	for k, v := range features {
		out[strings.ToLower(k)] = v
	}
	return out
}
