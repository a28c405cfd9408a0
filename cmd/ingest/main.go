// Command ingest analyzes one or more stored source texts and links every
// token to the lexicon. Text ids are passed as arguments; each text runs
// independently, so a failing text never aborts the rest of the batch.
//
// Exit codes: 0 = all texts ingested, 1 = error or at least one text failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/verba-app/verba-backend/internal/adapter/analyzer/latincy"
	"github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/annotation"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/form"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/link"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/text"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/word"
	"github.com/verba-app/verba-backend/internal/adapter/renderer/svgtree"
	"github.com/verba-app/verba-backend/internal/app"
	"github.com/verba-app/verba-backend/internal/config"
	"github.com/verba-app/verba-backend/internal/service/ingest"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
	"github.com/verba-app/verba-backend/internal/service/syntax"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s TEXT_ID [TEXT_ID...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	textIDs, err := parseTextIDs(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatalf("ingest: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting ingest", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	resolver := lexicon.NewService(logger, word.New(pool), form.New(pool), cfg.Ingest.ResolveRetries)

	var renderer syntax.TreeRenderer
	if cfg.Ingest.RenderTrees {
		renderer = svgtree.New()
	}
	syntaxSvc := syntax.NewService(logger, annotation.New(pool), renderer)

	svc := ingest.NewService(
		logger,
		text.New(pool),
		link.New(pool),
		resolver,
		syntaxSvc,
		latincy.NewClient(cfg.Analyzer, logger),
		txm,
	)

	batch, err := svc.IngestBatch(ctx, textIDs)
	if err != nil {
		logger.Error("ingest batch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, report := range batch.Reports {
		logger.Info("text ingested",
			slog.Int64("text_id", report.TextID),
			slog.Int("sentences", report.Sentences),
			slog.Int("links", report.LinksCreated),
			slog.Int("entries_created", report.EntriesCreated),
			slog.Int("ambiguities", len(report.Ambiguities)),
		)
	}
	for textID, msg := range batch.Errors {
		logger.Error("text failed", slog.Int64("text_id", textID), slog.String("error", msg))
	}

	if len(batch.Errors) > 0 {
		os.Exit(1)
	}
}

func parseTextIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one text id required")
	}

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid text id %q", arg)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
