package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verba-app/verba-backend/internal/domain"
)

// Reconcile runs one consolidation pass: merge duplicate entries, repair
// orphan links, recount frequency ranks. Exclusive via an advisory lock so
// overlapping passes never race; ingestion is unaffected and keeps running.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	report := &Report{ID: uuid.New(), DryRun: s.dryRun}

	err := s.withLock(ctx, func(ctx context.Context) error {
		if err := s.mergeDuplicates(ctx, report); err != nil {
			return err
		}
		if err := s.repairOrphans(ctx, report); err != nil {
			return err
		}

		if !s.dryRun {
			n, err := s.words.RecountFrequencyRanks(ctx)
			if err != nil {
				return fmt.Errorf("recount frequencies: %w", err)
			}
			report.RecountedEntries = n
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	s.log.InfoContext(ctx, "pass finished",
		slog.String("report_id", report.ID.String()),
		slog.Bool("dry_run", report.DryRun),
		slog.Int("merged", report.MergedPairs),
		slog.Int64("relinked_forms", report.RelinkedForms),
		slog.Int64("relinked_tokens", report.RelinkedTokens),
		slog.Int("repaired_links", report.RepairedLinks),
		slog.Int("flagged_links", report.FlaggedLinks),
	)

	return report, nil
}

// mergeDuplicates collapses every (normalized lemma, POS) group with more
// than one entry into its survivor. Each group commits in its own
// transaction: repoint forms, repoint links, delete victims, in that
// order, so a crash never leaves dangling references.
func (s *Service) mergeDuplicates(ctx context.Context, report *Report) error {
	groups, err := s.words.DuplicateGroups(ctx)
	if err != nil {
		return fmt.Errorf("find duplicate groups: %w", err)
	}

	for _, group := range groups {
		survivor, victims := pickSurvivor(group)

		for _, victim := range victims {
			report.Conflicts = append(report.Conflicts, mergeFields(&survivor, victim)...)
		}
		report.MergedPairs += len(victims)

		if s.dryRun {
			continue
		}

		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if _, err := s.words.Update(txCtx, &survivor); err != nil {
				return fmt.Errorf("update survivor %d: %w", survivor.ID, err)
			}

			for _, victim := range victims {
				forms, err := s.forms.Repoint(txCtx, victim.ID, survivor.ID)
				if err != nil {
					return fmt.Errorf("repoint forms of %d: %w", victim.ID, err)
				}
				links, err := s.links.Repoint(txCtx, victim.ID, survivor.ID)
				if err != nil {
					return fmt.Errorf("repoint links of %d: %w", victim.ID, err)
				}
				if err := s.words.Delete(txCtx, victim.ID); err != nil {
					return fmt.Errorf("delete victim %d: %w", victim.ID, err)
				}

				report.RelinkedForms += forms
				report.RelinkedTokens += links
				report.DeletedEntries++
			}

			return nil
		})
		if err != nil {
			return err
		}

		s.log.InfoContext(ctx, "group merged",
			slog.Int64("survivor_id", survivor.ID),
			slog.String("lemma", survivor.Lemma),
			slog.Int("victims", len(victims)),
		)
	}

	return nil
}

// repairOrphans re-resolves non-punctuation links that lost their entry.
// Only the stored surface and feature blob are available, so matching is
// surface-key-only; a miss flags the link for curation and leaves the
// entry reference null rather than fabricating one.
func (s *Service) repairOrphans(ctx context.Context, report *Report) error {
	orphans, err := s.links.Orphans(ctx)
	if err != nil {
		return fmt.Errorf("list orphan links: %w", err)
	}

	for _, orphan := range orphans {
		if orphan.NeedsReview {
			// already flagged on an earlier pass, do not re-process
			continue
		}

		res, err := s.resolver.ResolveSurface(ctx, orphan.Form, orphan.Morphology)
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			if !s.dryRun {
				if err := s.links.FlagNeedsReview(ctx, orphan.ID); err != nil {
					return fmt.Errorf("flag link %d: %w", orphan.ID, err)
				}
			}
			report.FlaggedLinks++
		case err != nil:
			return fmt.Errorf("repair link %d: %w", orphan.ID, err)
		default:
			if !s.dryRun {
				if err := s.links.AttachEntry(ctx, orphan.ID, res.Word.ID); err != nil {
					return fmt.Errorf("attach link %d: %w", orphan.ID, err)
				}
			}
			report.RepairedLinks++
		}
	}

	return nil
}

// RecountFrequencies re-ranks every entry by its token link count.
// Also runs as part of a full pass; exposed separately for the
// maintenance CLI.
func (s *Service) RecountFrequencies(ctx context.Context) (int64, error) {
	var n int64
	err := s.withLock(ctx, func(ctx context.Context) error {
		var err error
		if n, err = s.words.RecountFrequencyRanks(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recount frequencies: %w", err)
	}

	s.log.InfoContext(ctx, "frequency ranks recounted", slog.Int64("entries", n))

	return n, nil
}

// withLock runs fn while holding the pass advisory lock. Every mutating
// entry point goes through it so operator-run merges and recounts never
// interleave with a scheduled pass.
func (s *Service) withLock(ctx context.Context, fn func(ctx context.Context) error) error {
	acquired, err := s.lock.TryLock(ctx, s.lockKey)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("another pass is running: %w", domain.ErrConflict)
	}
	defer func() {
		if err := s.lock.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Error("release advisory lock", slog.String("error", err.Error()))
		}
	}()

	return fn(ctx)
}
