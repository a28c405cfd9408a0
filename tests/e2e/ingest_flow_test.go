//go:build e2e

package e2e_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verba-app/verba-backend/internal/analyzer"
	"github.com/verba-app/verba-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Scenario 1: ingesting a text builds links, provisional entries, forms,
// and sentence annotations in one pass.
// ---------------------------------------------------------------------------

func TestE2E_IngestText_FullPipeline(t *testing.T) {
	p := setupPipeline(t)
	resetTables(t, p.Pool)
	ctx := context.Background()

	text, err := p.Texts.Create(ctx, domain.SourceText{
		Title:   "Exercitium primum",
		Content: "Puella rosam amat.",
	})
	require.NoError(t, err)
	p.Analyzer.register(text.Content, amatSentence())

	report, err := p.Ingest.IngestText(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sentences)
	assert.Equal(t, 4, report.LinksCreated)
	assert.Equal(t, 3, report.EntriesCreated, "puella, rosa, amo are all unknown")

	// Links: one per token, punctuation unlinked.
	links, err := p.Links.GetByText(ctx, text.ID)
	require.NoError(t, err)
	require.Len(t, links, 4)
	assert.Equal(t, "Puella", links[0].Form, "literal surface preserved")
	require.NotNil(t, links[0].SyntacticRole)
	assert.Equal(t, domain.RoleSubject, *links[0].SyntacticRole)
	assert.True(t, links[3].IsPunct)
	assert.Nil(t, links[3].WordID)

	// Entries: provisional with placeholder gloss.
	candidates, err := p.Words.FindCandidates(ctx, []string{"rosa"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, domain.EntryStatusProvisional, candidates[0].Status)
	require.NotNil(t, candidates[0].Gloss)
	assert.Equal(t, domain.PlaceholderGloss, *candidates[0].Gloss)

	// Forms: the inflected surface was registered for later lookups.
	forms, err := p.Forms.ListByEntry(ctx, candidates[0].ID)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "rosam", forms[0].FormNormalized)

	// Tooltip read model joins link and entry.
	gloss, err := p.Links.GetAt(ctx, domain.TokenRef{
		TextID: text.ID, SentenceNumber: 1, PositionInSentence: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, gloss.Lemma)
	assert.Equal(t, "rosa", *gloss.Lemma)

	// Sentence annotation carries role groups and a rendered tree.
	annotation, err := p.Syntax.GetSentence(ctx, text.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, annotation.Roles[domain.RoleSubject])
	assert.Equal(t, []int{2}, annotation.Roles[domain.RoleDirectObject])
	assert.Equal(t, []int{3}, annotation.Roles[domain.RolePredicate])
	require.NotNil(t, annotation.TreeSVG)
	assert.True(t, strings.Contains(*annotation.TreeSVG, "<svg"))
}

// ---------------------------------------------------------------------------
// Scenario 2: re-ingesting replaces links wholesale and reuses entries.
// ---------------------------------------------------------------------------

func TestE2E_IngestText_ReingestIsIdempotent(t *testing.T) {
	p := setupPipeline(t)
	resetTables(t, p.Pool)
	ctx := context.Background()

	text, err := p.Texts.Create(ctx, domain.SourceText{
		Title:   "Iteratum",
		Content: "Puella rosam amat.",
	})
	require.NoError(t, err)
	p.Analyzer.register(text.Content, amatSentence())

	first, err := p.Ingest.IngestText(ctx, text.ID)
	require.NoError(t, err)
	require.Equal(t, 3, first.EntriesCreated)

	second, err := p.Ingest.IngestText(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.EntriesCreated, "entries from the first pass are reused")
	assert.Equal(t, 4, second.LinksCreated)

	links, err := p.Links.GetByText(ctx, text.ID)
	require.NoError(t, err)
	assert.Len(t, links, 4, "old links replaced, not accumulated")
}

// ---------------------------------------------------------------------------
// Scenario 3: a known entry with a matching form is linked instead of
// spawning a duplicate, macrons notwithstanding.
// ---------------------------------------------------------------------------

func TestE2E_IngestText_LinksToExistingEntry(t *testing.T) {
	p := setupPipeline(t)
	resetTables(t, p.Pool)
	ctx := context.Background()

	gloss := "rose"
	existing, err := p.Words.Create(ctx, &domain.Word{
		Lemma:           "rosa",
		LemmaNormalized: domain.NormalizeLatin("rosa"),
		PartOfSpeech:    domain.PartOfSpeechNoun,
		Status:          domain.EntryStatusActive,
		Gloss:           &gloss,
	})
	require.NoError(t, err)

	text, err := p.Texts.Create(ctx, domain.SourceText{
		Title:   "Nota",
		Content: "Puella rosam amat.",
	})
	require.NoError(t, err)

	// The analyzer reports the lemma with a macron; normalization must
	// still find the stored entry.
	sentence := amatSentence()
	sentence.Tokens[1].Lemma = "rosā"
	p.Analyzer.register(text.Content, sentence)

	report, err := p.Ingest.IngestText(ctx, text.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.EntriesCreated, "only puella and amo are new")

	tooltip, err := p.Links.GetAt(ctx, domain.TokenRef{
		TextID: text.ID, SentenceNumber: 1, PositionInSentence: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, tooltip.WordID)
	assert.Equal(t, existing.ID, *tooltip.WordID)
	require.NotNil(t, tooltip.Gloss)
	assert.Equal(t, "rose", *tooltip.Gloss)
}

// ---------------------------------------------------------------------------
// Scenario 4: analyzer failure aborts the text without touching stored links.
// ---------------------------------------------------------------------------

func TestE2E_IngestText_AnalyzerDownLeavesLinksIntact(t *testing.T) {
	p := setupPipeline(t)
	resetTables(t, p.Pool)
	ctx := context.Background()

	text, err := p.Texts.Create(ctx, domain.SourceText{
		Title:   "Fragile",
		Content: "Puella rosam amat.",
	})
	require.NoError(t, err)
	p.Analyzer.register(text.Content, amatSentence())

	_, err = p.Ingest.IngestText(ctx, text.ID)
	require.NoError(t, err)

	// Drop the canned document: the next analysis fails outright.
	delete(p.Analyzer.docs, text.Content)

	_, err = p.Ingest.IngestText(ctx, text.ID)
	require.ErrorIs(t, err, analyzer.ErrUnavailable)

	links, err := p.Links.GetByText(ctx, text.ID)
	require.NoError(t, err)
	assert.Len(t, links, 4, "links from the successful pass survive")
}
