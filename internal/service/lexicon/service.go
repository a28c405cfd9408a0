// Package lexicon provides find-or-create resolution of analyzed tokens
// against the lexicon store.
package lexicon

import (
	"context"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/domain"
)

type wordRepo interface {
	FindCandidates(ctx context.Context, keys []string) ([]domain.Word, error)
	Create(ctx context.Context, w *domain.Word) (*domain.Word, error)
}

type formRepo interface {
	Ensure(ctx context.Context, entryID int64, form, normalized string, morphology *string) (bool, error)
}

// Service resolves tokens to lexicon entries.
type Service struct {
	log     *slog.Logger
	words   wordRepo
	forms   formRepo
	retries int
}

// NewService creates a new lexicon resolution service. retries bounds how
// often a lost create race is retried before giving up.
func NewService(log *slog.Logger, words wordRepo, forms formRepo, retries int) *Service {
	if retries < 1 {
		retries = 3
	}
	return &Service{
		log:     log.With("service", "lexicon"),
		words:   words,
		forms:   forms,
		retries: retries,
	}
}
