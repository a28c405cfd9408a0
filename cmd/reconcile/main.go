// Command reconcile runs one lexicon consolidation pass: duplicate entries
// are merged into survivors, orphan token links repaired, and frequency
// ranks recounted. Intended to be invoked by an external cron job after
// ingestion, never concurrently with itself (an advisory lock enforces
// this on the database side).
//
// Special modes:
//
//	--dry-run                  report planned work without mutating
//	--force-merge SURV:VICT    merge one explicit pair, keys need not match
//	--recount-only             only recount frequency ranks
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verba-app/verba-backend/internal/adapter/postgres"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/form"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/link"
	"github.com/verba-app/verba-backend/internal/adapter/postgres/word"
	"github.com/verba-app/verba-backend/internal/app"
	"github.com/verba-app/verba-backend/internal/config"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
	"github.com/verba-app/verba-backend/internal/service/reconcile"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report planned work without mutating")
	forceMerge := flag.String("force-merge", "", "merge one explicit SURVIVOR_ID:VICTIM_ID pair")
	recountOnly := flag.Bool("recount-only", false, "only recount frequency ranks")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting reconcile", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	wordRepo := word.New(pool)
	formRepo := form.New(pool)

	resolver := lexicon.NewService(logger, wordRepo, formRepo, cfg.Ingest.ResolveRetries)

	svc := reconcile.NewService(
		logger,
		wordRepo,
		formRepo,
		link.New(pool),
		resolver,
		postgres.NewTxManager(pool),
		postgres.NewAdvisoryLock(pool),
		cfg.Reconcile.LockKey,
		*dryRun || cfg.Reconcile.DryRun,
	)

	switch {
	case *forceMerge != "":
		survivorID, victimID, err := parseMergePair(*forceMerge)
		if err != nil {
			log.Fatalf("reconcile: %v", err)
		}
		report, err := svc.ForceMerge(ctx, survivorID, victimID)
		if err != nil {
			logger.Error("force merge failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logReport(logger, report)

	case *recountOnly:
		n, err := svc.RecountFrequencies(ctx)
		if err != nil {
			logger.Error("recount failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("recount completed", slog.Int64("entries", n))

	default:
		report, err := svc.Reconcile(ctx)
		if err != nil {
			logger.Error("reconcile failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logReport(logger, report)
	}
}

func logReport(logger *slog.Logger, report *reconcile.Report) {
	logger.Info("reconcile completed",
		slog.Bool("dry_run", report.DryRun),
		slog.Int("merged_pairs", report.MergedPairs),
		slog.Int64("relinked_forms", report.RelinkedForms),
		slog.Int64("relinked_tokens", report.RelinkedTokens),
		slog.Int("deleted_entries", report.DeletedEntries),
		slog.Int("repaired_links", report.RepairedLinks),
		slog.Int("flagged_links", report.FlaggedLinks),
		slog.Int("conflicts", len(report.Conflicts)),
	)
	for _, c := range report.Conflicts {
		logger.Warn("merge conflict",
			slog.Int64("survivor_id", c.SurvivorID),
			slog.Int64("victim_id", c.VictimID),
			slog.String("field", c.Field),
			slog.String("kept", c.SurvivorValue),
			slog.String("discarded", c.VictimValue),
		)
	}
}

func parseMergePair(s string) (int64, int64, error) {
	survivorStr, victimStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid merge pair %q, want SURVIVOR_ID:VICTIM_ID", s)
	}
	survivorID, err := strconv.ParseInt(survivorStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid survivor id %q", survivorStr)
	}
	victimID, err := strconv.ParseInt(victimStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid victim id %q", victimStr)
	}
	return survivorID, victimID, nil
}
