package workflow

import (
	"context"
	"strings"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
)

// SyncReport summarizes a Sync sweep.
type SyncReport struct {
	DryRun           bool
	Planned          map[string]string
	Completed        int
	Duplicates       int
	Failed           int
	Skipped          int
	SubtitleFailures int
}

// Sync organizes every cataloged record into targetRoot, one file at a time.
// An empty targetRoot falls back to the configured target root. Per-file
// failures are recorded on the record and reported; the sweep continues.
func (m *Manager) Sync(ctx context.Context, targetRoot string, dryRun bool) (SyncReport, error) {
	ctx = services.WithStage(ctx, "sync")
	report := SyncReport{DryRun: dryRun}
	if strings.TrimSpace(targetRoot) == "" && m.cfg != nil {
		targetRoot = m.cfg.Paths.TargetRoot
	}
	if strings.TrimSpace(targetRoot) == "" {
		return report, services.Wrap(services.ErrConfiguration, "sync", "resolve target", "no target root given or configured", nil)
	}
	if dryRun {
		report.Planned = make(map[string]string)
	}

	records, err := m.catalog.Records(ctx)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		m.notifier.Warn(ctx, "The catalog is empty. Run scan first.")
		return report, nil
	}
	if dryRun {
		m.notifier.Info(ctx, "Planning %d files into %s (dry run).", len(records), targetRoot)
	} else {
		m.notifier.Info(ctx, "Organizing %d files into %s.", len(records), targetRoot)
	}
	defer m.state.ClearProgress()

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m.state.UpdateProgress(i+1, len(records), "Organizing "+record.Name)
		if record.Status == media.StatusCompleted && !dryRun {
			report.Skipped++
			continue
		}
		if !dryRun {
			processing := record.Clone()
			processing.Status = media.StatusProcessing
			m.state.UpdateFile(processing)
		}

		result, err := m.mover.Organize(ctx, record, targetRoot, dryRun)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			switch result.Record.Status {
			case media.StatusDuplicate:
				report.Duplicates++
				m.notifier.Warn(ctx, "Skipped %s: destination already exists.", record.Name)
			default:
				report.Failed++
				m.notifier.Error(ctx, "Failed to organize %s: %v", record.Name, err)
			}
		} else {
			switch {
			case result.Skipped:
				report.Skipped++
				m.notifier.Warn(ctx, "Skipped %s: no series assigned.", record.Name)
			case dryRun:
				report.Planned[record.Path] = result.Destination
			default:
				report.Completed++
			}
		}
		report.SubtitleFailures += len(result.SubtitleFailures)
		for _, failure := range result.SubtitleFailures {
			m.notifier.Warn(ctx, "Subtitle %s was not moved: %v", failure.Path, failure.Err)
		}

		if dryRun || result.Skipped {
			continue
		}
		// The move is committed, so the new path is persisted even when the
		// sweep is being cancelled.
		if err := m.catalog.Save(context.WithoutCancel(ctx), result.Record); err != nil {
			return report, err
		}
		m.state.UpdateFile(result.Record)
	}

	m.logger.Info("sync finished",
		logging.Bool("dry_run", dryRun),
		logging.Int("completed", report.Completed),
		logging.Int("duplicates", report.Duplicates),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
	)
	if dryRun {
		m.notifier.Success(ctx, "Dry run planned %d moves.", len(report.Planned))
		return report, nil
	}
	m.notifier.Success(ctx, "Organized %d files (%d duplicates, %d failed).", report.Completed, report.Duplicates, report.Failed)
	return report, nil
}
