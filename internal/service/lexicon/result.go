package lexicon

import "github.com/verba-app/verba-backend/internal/domain"

// ResolveInput is one analyzed token submitted for resolution.
type ResolveInput struct {
	Surface   string
	LemmaHint string
	POS       domain.PartOfSpeech
	// analyzer feature bundle, e.g. Case=Nom, Gender=Fem
	Features map[string]string
	// raw feature string stored alongside the surface form
	Morph string
}

// Resolution is the outcome of resolving one token. Word is never nil on a
// nil error: a miss creates a provisional entry rather than failing.
type Resolution struct {
	Word    *domain.Word
	Created bool
	// set when the tie-break ladder had to fall through to entry id
	Diagnostic *Diagnostic
}

// Diagnostic records an ambiguous resolution: several candidates survived
// every distinguishing feature and the lowest id won. Low severity, kept
// for human curation.
type Diagnostic struct {
	Surface      string
	LemmaHint    string
	CandidateIDs []int64
	ChosenID     int64
}
