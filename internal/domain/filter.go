package domain

// WordFilter contains filtering/pagination parameters for lexicon listings.
// Used by curation tooling to pull review queues (provisional entries,
// entries flagged by reconciliation, entries without a gloss).
type WordFilter struct {
	Search       *string
	PartOfSpeech *PartOfSpeech
	Status       *EntryStatus
	MissingGloss *bool
	Fundamental  *bool
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}
