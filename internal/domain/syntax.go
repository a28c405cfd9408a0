package domain

import "time"

// DependencyToken is one token of a sentence's dependency graph, stored
// verbatim from the analyzer output. Positions are 1-based; Head is 0 for
// the root token. Morph is the analyzer's opaque feature string.
type DependencyToken struct {
	Position int    `json:"id"`
	Text     string `json:"text"`
	Lemma    string `json:"lemma"`
	UPOS     string `json:"pos"`
	Deprel   string `json:"dep"`
	Head     int    `json:"head"`
	Morph    string `json:"morph"`
}

// RoleGroups maps each pedagogical role to the token positions that carry
// it. A token appears in at most one role.
type RoleGroups map[SyntaxRole][]int

// SentenceAnnotation is the per-sentence syntactic artifact: the dependency
// graph, the projected role groups, and an optional pre-rendered tree.
// Overwritten wholesale whenever the sentence is re-analyzed; its lifecycle
// is independent of token links and lexicon entries.
type SentenceAnnotation struct {
	ID             int64
	TextID         int64
	SentenceNumber int
	Sentence       string
	Dependencies   []DependencyToken
	Roles          RoleGroups
	TreeSVG        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
