package syntax

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/domain"
)

// Annotate projects roles for one sentence and stores the annotation,
// replacing any previous analysis. The tree is best-effort: a missing or
// failing renderer never blocks the role output.
func (s *Service) Annotate(ctx context.Context, textID int64, sentenceNumber int, sentence string, tokens []domain.DependencyToken) (*domain.SentenceAnnotation, error) {
	annotation := domain.SentenceAnnotation{
		TextID:         textID,
		SentenceNumber: sentenceNumber,
		Sentence:       sentence,
		Dependencies:   tokens,
		Roles:          Project(tokens),
	}

	if s.renderer != nil {
		svg, err := s.renderer.Render(tokens)
		if err != nil {
			s.log.WarnContext(ctx, "tree rendering failed",
				slog.Int64("text_id", textID),
				slog.Int("sentence", sentenceNumber),
				slog.String("error", err.Error()),
			)
		} else {
			annotation.TreeSVG = &svg
		}
	}

	stored, err := s.annotations.Upsert(ctx, annotation)
	if err != nil {
		return nil, fmt.Errorf("annotate sentence %d of text %d: %w", sentenceNumber, textID, err)
	}

	return stored, nil
}
