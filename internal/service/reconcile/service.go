// Package reconcile consolidates duplicate lexicon entries and repairs
// dangling token links. Runs as an idempotent batch job: a second pass
// over unchanged data produces zero further mutations.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/domain"
	"github.com/verba-app/verba-backend/internal/service/lexicon"
)

type wordRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Word, error)
	DuplicateGroups(ctx context.Context) ([][]domain.Word, error)
	Update(ctx context.Context, w *domain.Word) (*domain.Word, error)
	Delete(ctx context.Context, id int64) error
	RecountFrequencyRanks(ctx context.Context) (int64, error)
}

type formRepo interface {
	Repoint(ctx context.Context, victimID, survivorID int64) (int64, error)
}

type linkRepo interface {
	Repoint(ctx context.Context, victimID, survivorID int64) (int64, error)
	Orphans(ctx context.Context) ([]domain.TokenLink, error)
	AttachEntry(ctx context.Context, linkID, entryID int64) error
	FlagNeedsReview(ctx context.Context, linkID int64) error
}

type surfaceResolver interface {
	ResolveSurface(ctx context.Context, surface string, features map[string]string) (*lexicon.Resolution, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type advisoryLocker interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context) error
}

// Service runs consolidation passes over the lexicon.
type Service struct {
	log      *slog.Logger
	words    wordRepo
	forms    formRepo
	links    linkRepo
	resolver surfaceResolver
	tx       txManager
	lock     advisoryLocker
	lockKey  int64
	dryRun   bool
}

// NewService creates a new reconcile service. lockKey identifies the
// advisory lock guarding pass exclusivity; dryRun reports planned work
// without mutating anything.
func NewService(
	log *slog.Logger,
	words wordRepo,
	forms formRepo,
	links linkRepo,
	resolver surfaceResolver,
	tx txManager,
	lock advisoryLocker,
	lockKey int64,
	dryRun bool,
) *Service {
	return &Service{
		log:      log.With("service", "reconcile"),
		words:    words,
		forms:    forms,
		links:    links,
		resolver: resolver,
		tx:       tx,
		lock:     lock,
		lockKey:  lockKey,
		dryRun:   dryRun,
	}
}
