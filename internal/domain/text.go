package domain

import "time"

// SourceText is an immutable reading text. Links and annotations hang off
// it; its content is never mutated by the pipeline.
type SourceText struct {
	ID         int64
	Title      string
	Author     *string
	Content    string
	Difficulty int
	CreatedAt  time.Time
}

// TokenLink is one positional record per token occurrence in a source text.
// WordID is null only for punctuation tokens, or transiently for orphans
// awaiting repair (in which case NeedsReview is set by the reconciler).
// Form holds the literal surface string as it appeared — tooltips must show
// exactly what was read, never the normalized key.
type TokenLink struct {
	ID                 int64
	TextID             int64
	WordID             *int64
	SentenceNumber     int
	PositionInSentence int
	Form               string
	Morphology         map[string]string
	SyntacticRole      *SyntaxRole
	IsPunct            bool
	NeedsReview        bool
	CreatedAt          time.Time
}

// TokenRef identifies a token position for the tooltip lookup query.
type TokenRef struct {
	TextID             int64
	SentenceNumber     int
	PositionInSentence int
}

// TokenGloss is the read-model row the presentation layer consumes for
// tooltips: the link joined with its resolved entry, if any.
type TokenGloss struct {
	Link         TokenLink
	WordID       *int64
	Lemma        *string
	PartOfSpeech *PartOfSpeech
	Gloss        *string
}
