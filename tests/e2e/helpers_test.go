//go:build e2e

// Full-pipeline scenarios against a real PostgreSQL container. The suite
// truncates shared tables, so run it on its own:
//
//	go test -tags e2e ./tests/e2e/...
package e2e_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verba-app/verba-backend/internal/adapter/postgres"
	annotationrepo "github.com/verba-app/verba-backend/internal/adapter/postgres/annotation"
	formrepo "github.com/verba-app/verba-backend/internal/adapter/postgres/form"
	linkrepo "github.com/verba-app/verba-backend/internal/adapter/postgres/link"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/testhelper"
	textrepo "github.com/verba-app/verba-backend/internal/adapter/postgres/text"
	wordrepo "github.com/verba-app/verba-backend/internal/adapter/postgres/word"
	"github.com/verba-app/verba-backend/internal/adapter/renderer/svgtree"
	"github.com/verba-app/verba-backend/internal/analyzer"
	"github.com/verba-app/verba-backend/internal/service/ingest"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
	"github.com/verba-app/verba-backend/internal/service/reconcile"
	"github.com/verba-app/verba-backend/internal/service/syntax"
)

// testLockKey keeps E2E reconcile passes off any key a real deployment uses.
const testLockKey int64 = 424242

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// ---------------------------------------------------------------------------
// Stub analyzer: canned documents keyed by text content.
// ---------------------------------------------------------------------------

type stubAnalyzer struct {
	docs map[string]*analyzer.Document
}

func (a *stubAnalyzer) Analyze(_ context.Context, text string) (*analyzer.Document, error) {
	doc, ok := a.docs[text]
	if !ok {
		return nil, analyzer.ErrUnavailable
	}
	return doc, nil
}

func (a *stubAnalyzer) register(text string, sentences ...analyzer.Sentence) {
	a.docs[text] = &analyzer.Document{Sentences: sentences}
}

// ---------------------------------------------------------------------------
// testPipeline wires the full stack minus transport, backed by a real
// PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

type testPipeline struct {
	Pool *pgxpool.Pool

	Texts       *textrepo.Repo
	Words       *wordrepo.Repo
	Forms       *formrepo.Repo
	Links       *linkrepo.Repo
	Annotations *annotationrepo.Repo

	Lexicon   *lexicon.Service
	Syntax    *syntax.Service
	Ingest    *ingest.Service
	Reconcile *reconcile.Service

	Analyzer *stubAnalyzer

	log *slog.Logger
	txm *postgres.TxManager
}

// dryRunReconcile builds a reconcile service over the same stores that
// reports planned work without writing any of it.
func (p *testPipeline) dryRunReconcile() *reconcile.Service {
	return reconcile.NewService(
		p.log, p.Words, p.Forms, p.Links, p.Lexicon, p.txm,
		postgres.NewAdvisoryLock(p.Pool), testLockKey, true,
	)
}

func setupPipeline(t *testing.T) *testPipeline {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	texts := textrepo.New(pool)
	words := wordrepo.New(pool)
	forms := formrepo.New(pool)
	links := linkrepo.New(pool)
	annotations := annotationrepo.New(pool)

	stub := &stubAnalyzer{docs: make(map[string]*analyzer.Document)}

	lexiconSvc := lexicon.NewService(logger, words, forms, 3)
	syntaxSvc := syntax.NewService(logger, annotations, svgtree.New())
	ingestSvc := ingest.NewService(logger, texts, links, lexiconSvc, syntaxSvc, stub, txm)
	reconcileSvc := reconcile.NewService(
		logger, words, forms, links, lexiconSvc, txm,
		postgres.NewAdvisoryLock(pool), testLockKey, false,
	)

	return &testPipeline{
		Pool:        pool,
		Texts:       texts,
		Words:       words,
		Forms:       forms,
		Links:       links,
		Annotations: annotations,
		Lexicon:     lexiconSvc,
		Syntax:      syntaxSvc,
		Ingest:      ingestSvc,
		Reconcile:   reconcileSvc,
		Analyzer:    stub,
		log:         logger,
		txm:         txm,
	}
}

// resetTables wipes pipeline state. Reconcile scans the whole database, so
// its scenarios need a clean slate; they must not run in parallel.
func resetTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	testhelper.Truncate(t, pool,
		"token_links", "sentence_annotations", "inflected_forms",
		"source_texts", "lexicon_entries",
	)
}

// ---------------------------------------------------------------------------
// Canned sentences.
// ---------------------------------------------------------------------------

func amatSentence() analyzer.Sentence {
	return analyzer.Sentence{
		Number: 1,
		Text:   "Puella rosam amat.",
		Tokens: []analyzer.Token{
			{Position: 1, Text: "Puella", Lemma: "puella", UPOS: "NOUN", Deprel: "nsubj", Head: 3, Morph: "Case=Nom|Gender=Fem|Number=Sing"},
			{Position: 2, Text: "rosam", Lemma: "rosa", UPOS: "NOUN", Deprel: "obj", Head: 3, Morph: "Case=Acc|Gender=Fem|Number=Sing"},
			{Position: 3, Text: "amat", Lemma: "amo", UPOS: "VERB", Deprel: "root", Head: 0, Morph: "Number=Sing|Person=3"},
			{Position: 4, Text: ".", Lemma: ".", UPOS: "PUNCT", Deprel: "punct", Head: 3},
		},
	}
}
