package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verba-app/verba-backend/internal/domain"
)

// ForceMerge folds one explicit victim into an explicit survivor, skipping
// duplicate detection: the operator vouches that the two entries are the
// same word even though their keys or POS differ. Same field-merge and
// repoint-then-delete routine as a full pass, under the same advisory
// lock so it cannot interleave with one.
func (s *Service) ForceMerge(ctx context.Context, survivorID, victimID int64) (*Report, error) {
	if survivorID == victimID {
		return nil, fmt.Errorf("force merge: survivor and victim are the same entry: %w", domain.ErrValidation)
	}

	report := &Report{DryRun: s.dryRun}

	err := s.withLock(ctx, func(ctx context.Context) error {
		survivor, err := s.words.GetByID(ctx, survivorID)
		if err != nil {
			return fmt.Errorf("survivor: %w", err)
		}
		victim, err := s.words.GetByID(ctx, victimID)
		if err != nil {
			return fmt.Errorf("victim: %w", err)
		}

		report.Conflicts = mergeFields(survivor, *victim)
		report.MergedPairs = 1

		if s.dryRun {
			return nil
		}

		return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if _, err := s.words.Update(txCtx, survivor); err != nil {
				return fmt.Errorf("update survivor %d: %w", survivorID, err)
			}
			forms, err := s.forms.Repoint(txCtx, victimID, survivorID)
			if err != nil {
				return fmt.Errorf("repoint forms: %w", err)
			}
			links, err := s.links.Repoint(txCtx, victimID, survivorID)
			if err != nil {
				return fmt.Errorf("repoint links: %w", err)
			}
			if err := s.words.Delete(txCtx, victimID); err != nil {
				return fmt.Errorf("delete victim %d: %w", victimID, err)
			}

			report.RelinkedForms = forms
			report.RelinkedTokens = links
			report.DeletedEntries = 1

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("force merge: %w", err)
	}

	if s.dryRun {
		return report, nil
	}

	s.log.InfoContext(ctx, "forced merge",
		slog.Int64("survivor_id", survivorID),
		slog.Int64("victim_id", victimID),
		slog.Int64("relinked_tokens", report.RelinkedTokens),
	)

	return report, nil
}
