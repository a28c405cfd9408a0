// Package analyzer defines the port for external morphosyntactic analysis.
package analyzer

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when the analysis backend cannot be reached or
// produces an unusable response. Callers treat the whole document as failed;
// no partial results are persisted.
var ErrUnavailable = errors.New("analyzer unavailable")

// Token is one analyzed token. Position is 1-based within its sentence;
// Head is 0 for the sentence root.
type Token struct {
	Position int
	Text     string
	Lemma    string
	UPOS     string
	Deprel   string
	Head     int
	Morph    string
	Punct    bool
}

// Features parses the token's raw feature string ("Case=Nom|Number=Sing")
// into a map. Malformed segments are skipped.
func (t Token) Features() map[string]string {
	features := make(map[string]string)
	for _, part := range strings.Split(t.Morph, "|") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		features[key] = value
	}
	return features
}

// IsPunct reports whether the token is punctuation, from either the
// backend's explicit flag or the universal POS tag.
func (t Token) IsPunct() bool {
	return t.Punct || t.UPOS == "PUNCT"
}

// Sentence is one sentence of an analyzed document. Number is 1-based.
type Sentence struct {
	Number int
	Text   string
	Tokens []Token
}

// Document is the full analysis of a source text.
type Document struct {
	Sentences []Sentence
}

// Analyzer produces sentence-segmented, lemmatized, dependency-parsed
// analyses of Latin text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Document, error)
}
