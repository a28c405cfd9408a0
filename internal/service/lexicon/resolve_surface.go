package lexicon

import (
	"context"
	"fmt"
	"sort"

	"github.com/verba-app/verba-backend/internal/domain"
)

// ResolveSurface is the degraded post-hoc mode used by orphan repair: only
// the stored surface form and feature bundle are available, so the lookup
// runs on the surface key alone, with no POS filter and no entry creation.
// Returns ErrNotFound when nothing matches; the caller decides what to do
// with the unrepairable link.
func (s *Service) ResolveSurface(ctx context.Context, surface string, features map[string]string) (*Resolution, error) {
	keys := normalizedKeys(surface)
	if len(keys) == 0 {
		return nil, fmt.Errorf("resolve surface %q: %w", surface, domain.ErrValidation)
	}

	candidates, err := s.words.FindCandidates(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve surface %q: %w", surface, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("resolve surface %q: %w", surface, domain.ErrNotFound)
	}

	folded := foldFeatureKeys(features)

	remaining := candidates
	if narrowed := narrow(remaining, func(w domain.Word) bool { return w.MorphClassMatches(folded) }); len(narrowed) > 0 {
		remaining = narrowed
	}

	best := maxStatusRank(remaining)
	if narrowed := narrow(remaining, func(w domain.Word) bool { return w.Status.Rank() == best }); len(narrowed) > 0 {
		remaining = narrowed
	}

	sort.Slice(remaining, func(i, j int) bool { return remaining[i].ID < remaining[j].ID })
	chosen := remaining[0]

	res := &Resolution{Word: &chosen}
	if len(remaining) > 1 {
		res.Diagnostic = &Diagnostic{Surface: surface, ChosenID: chosen.ID}
		for _, w := range remaining {
			res.Diagnostic.CandidateIDs = append(res.Diagnostic.CandidateIDs, w.ID)
		}
	}

	return res, nil
}
