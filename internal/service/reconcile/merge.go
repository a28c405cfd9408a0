package reconcile

import (
	"sort"
	"strings"

	"github.com/verba-app/verba-backend/internal/domain"
)

// pickSurvivor orders a duplicate group by the survivor ladder: real gloss
// first, then curation status, then lowest id. Returns the survivor and the
// victims in deterministic order.
func pickSurvivor(group []domain.Word) (domain.Word, []domain.Word) {
	sorted := make([]domain.Word, len(group))
	copy(sorted, group)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasGloss() != b.HasGloss() {
			return a.HasGloss()
		}
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() > b.Status.Rank()
		}
		return a.ID < b.ID
	})

	return sorted[0], sorted[1:]
}

// mergeFields folds a victim's attributes into the survivor. The survivor
// keeps its own non-empty values; empty slots adopt the victim's. The
// fundamental flag is OR'd; rank and level take the lower non-null value.
// Differing non-empty values on both sides produce a conflict record.
func mergeFields(survivor *domain.Word, victim domain.Word) []Conflict {
	var conflicts []Conflict

	conflict := func(field, sv, vv string) {
		conflicts = append(conflicts, Conflict{
			SurvivorID:    survivor.ID,
			VictimID:      victim.ID,
			Field:         field,
			SurvivorValue: sv,
			VictimValue:   vv,
		})
	}

	// Placeholder glosses count as empty.
	if !survivor.HasGloss() && victim.HasGloss() {
		survivor.Gloss = victim.Gloss
	} else if survivor.HasGloss() && victim.HasGloss() && *survivor.Gloss != *victim.Gloss {
		conflict("gloss", *survivor.Gloss, *victim.Gloss)
	}

	stringFields := []struct {
		name     string
		survivor **string
		victim   *string
	}{
		{"genitive", &survivor.Genitive, victim.Genitive},
		{"gender", &survivor.Gender, victim.Gender},
		{"declension", &survivor.Declension, victim.Declension},
		{"principal_parts", &survivor.PrincipalParts, victim.PrincipalParts},
		{"conjugation", &survivor.Conjugation, victim.Conjugation},
	}
	for _, f := range stringFields {
		if isEmpty(*f.survivor) && !isEmpty(f.victim) {
			*f.survivor = f.victim
			continue
		}
		if !isEmpty(*f.survivor) && !isEmpty(f.victim) && **f.survivor != *f.victim {
			conflict(f.name, **f.survivor, *f.victim)
		}
	}

	survivor.IsFundamental = survivor.IsFundamental || victim.IsFundamental
	survivor.FrequencyRank = lowerNonNull(survivor.FrequencyRank, victim.FrequencyRank)
	survivor.Level = lowerNonNull(survivor.Level, victim.Level)

	return conflicts
}

func isEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func lowerNonNull(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b < *a:
		return b
	default:
		return a
	}
}
