package domain

import (
	"strings"
	"time"
)

// PlaceholderGloss marks auto-created entries that have not been glossed
// yet. Treated the same as an empty gloss.
const PlaceholderGloss = "[PENDING]"

// Word is a canonical lexicon entry: one dictionary headword plus the
// morphological-class attributes relevant to its part of speech.
// Created by the resolver (provisional) or by curation; merged away only
// by the reconciler.
type Word struct {
	ID              int64
	Lemma           string
	LemmaNormalized string
	PartOfSpeech    PartOfSpeech
	Status          EntryStatus
	Gloss           *string

	// Nominal attributes.
	Genitive   *string
	Gender     *string
	Declension *string

	// Verbal attributes.
	PrincipalParts *string
	Conjugation    *string

	// Pedagogical metadata.
	FrequencyRank *int
	Level         *int
	IsFundamental bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasGloss reports whether the entry carries a real, human-usable gloss.
// Empty strings and the import placeholder do not count.
func (w *Word) HasGloss() bool {
	return w.Gloss != nil && strings.TrimSpace(*w.Gloss) != "" && *w.Gloss != PlaceholderGloss
}

// MorphClassMatches reports whether the entry's class attributes agree with
// the analyzer feature set. Only features the entry actually has an opinion
// about are compared; absence on either side is not a mismatch.
func (w *Word) MorphClassMatches(features map[string]string) bool {
	if v, ok := features["declension"]; ok && w.Declension != nil {
		if !strings.EqualFold(v, *w.Declension) {
			return false
		}
	}
	if v, ok := features["conjugation"]; ok && w.Conjugation != nil {
		if !strings.EqualFold(v, *w.Conjugation) {
			return false
		}
	}
	if v, ok := features["gender"]; ok && w.Gender != nil {
		if !genderMatches(v, *w.Gender) {
			return false
		}
	}
	return true
}

// genderMatches compares analyzer gender values (Fem, Masc, Neut) with the
// single-letter form stored on entries (f, m, n).
func genderMatches(feature, stored string) bool {
	f := strings.ToLower(feature)
	s := strings.ToLower(stored)
	if f == s {
		return true
	}
	if len(f) > 0 && len(s) > 0 && f[0] == s[0] {
		return true
	}
	return false
}

// InflectedForm is a reverse-index row: one observed surface form pointing
// at its lexicon entry, enabling surface → lemma lookups without re-running
// the analyzer. Unique per (entry, normalized form).
type InflectedForm struct {
	ID             int64
	WordID         int64
	Form           string
	FormNormalized string
	Morphology     *string
	CreatedAt      time.Time
}
