package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// IngestBatch runs the given texts independently. A failing text is
// recorded in the batch report and never aborts the rest; only context
// cancellation stops the loop early.
func (s *Service) IngestBatch(ctx context.Context, textIDs []int64) (*BatchReport, error) {
	batch := &BatchReport{ID: uuid.New(), Errors: make(map[int64]string)}

	for _, textID := range textIDs {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		report, err := s.IngestText(ctx, textID)
		if err != nil {
			s.log.ErrorContext(ctx, "text ingestion failed",
				slog.Int64("text_id", textID),
				slog.String("error", err.Error()),
			)
			batch.Errors[textID] = err.Error()
			continue
		}

		batch.Reports = append(batch.Reports, *report)
	}

	s.log.InfoContext(ctx, "batch finished",
		slog.String("batch_id", batch.ID.String()),
		slog.Int("succeeded", len(batch.Reports)),
		slog.Int("failed", len(batch.Errors)),
	)

	return batch, nil
}
