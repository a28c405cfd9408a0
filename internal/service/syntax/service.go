// Package syntax projects analyzer dependency output onto the pedagogical
// role vocabulary and persists per-sentence annotations.
package syntax

import (
	"context"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/domain"
)

type annotationRepo interface {
	Upsert(ctx context.Context, a domain.SentenceAnnotation) (*domain.SentenceAnnotation, error)
	Get(ctx context.Context, textID int64, sentenceNumber int) (*domain.SentenceAnnotation, error)
	GetByText(ctx context.Context, textID int64) ([]domain.SentenceAnnotation, error)
}

// TreeRenderer draws a dependency graph. Optional: a nil renderer or a
// render error downgrades to an annotation without a tree.
type TreeRenderer interface {
	Render(tokens []domain.DependencyToken) (string, error)
}

// Service maps dependency parses to role groups and stores annotations.
type Service struct {
	log         *slog.Logger
	annotations annotationRepo
	renderer    TreeRenderer
}

// NewService creates a new syntax service. renderer may be nil.
func NewService(log *slog.Logger, annotations annotationRepo, renderer TreeRenderer) *Service {
	return &Service{
		log:         log.With("service", "syntax"),
		annotations: annotations,
		renderer:    renderer,
	}
}

// GetSentence returns the stored annotation for one sentence.
func (s *Service) GetSentence(ctx context.Context, textID int64, sentenceNumber int) (*domain.SentenceAnnotation, error) {
	return s.annotations.Get(ctx, textID, sentenceNumber)
}

// GetByText returns all stored annotations of a text.
func (s *Service) GetByText(ctx context.Context, textID int64) ([]domain.SentenceAnnotation, error) {
	return s.annotations.GetByText(ctx, textID)
}
