package workflow

import (
	"context"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/organizer"
	"otakurganizer/internal/services"
)

// Undo reverses the move journal and points cataloged records back at the
// restored paths. An empty journal is reported as a warning, not an error.
func (m *Manager) Undo(ctx context.Context) (organizer.UndoReport, error) {
	ctx = services.WithStage(ctx, "undo")
	report, err := m.mover.Undo(ctx)
	if report.Empty {
		m.notifier.Warn(ctx, "Nothing to undo.")
		return report, err
	}
	if remapErr := m.remapRestored(ctx, report.Restored); remapErr != nil && err == nil {
		err = remapErr
	}
	if err != nil {
		m.notifier.Error(ctx, "Undo stopped: %v", err)
		return report, err
	}
	for _, failure := range report.Failures {
		m.notifier.Error(ctx, "Could not restore %s: %v", failure.Operation.From, failure.Err)
	}
	if len(report.Missing) > 0 {
		m.notifier.Warn(ctx, "%d moved files no longer exist and were skipped.", len(report.Missing))
	}
	m.notifier.Success(ctx, "Restored %d files.", len(report.Restored))
	return report, nil
}

// remapRestored rewrites record and subtitle paths from each restored
// destination back to its source. Restored primaries return to pending.
func (m *Manager) remapRestored(ctx context.Context, restored []media.MoveOperation) error {
	if len(restored) == 0 {
		return nil
	}
	back := make(map[string]string, len(restored))
	for _, op := range restored {
		back[op.To] = op.From
	}
	records, err := m.catalog.Records(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}
	changed := make([]media.FileRecord, 0, len(restored))
	for _, record := range records {
		touched := false
		if from, ok := back[record.Path]; ok {
			record.Path = from
			record.Status = media.StatusPending
			touched = true
		}
		for i, sub := range record.Subtitles {
			if from, ok := back[sub]; ok {
				record.Subtitles[i] = from
				touched = true
			}
		}
		if touched {
			changed = append(changed, record)
		}
	}
	if len(changed) == 0 {
		return nil
	}
	if err := m.catalog.Save(context.WithoutCancel(ctx), changed...); err != nil {
		return err
	}
	for _, record := range changed {
		m.state.UpdateFile(record)
	}
	m.logger.Info("catalog paths restored", logging.Int("records", len(changed)))
	return nil
}
