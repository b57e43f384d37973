package workflow

import (
	"context"
	"errors"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/services"
	"otakurganizer/internal/suggest"
)

// AIReport summarizes an AIOrganize pass.
type AIReport struct {
	Applied  int
	Rejected int
	Failed   int
}

// AIOrganize asks the suggestion provider for every record's identity and
// applies suggestions that pass validation. Records with invalid or failed
// suggestions are left unchanged.
func (m *Manager) AIOrganize(ctx context.Context) (AIReport, error) {
	ctx = services.WithStage(ctx, "ai-organize")
	var report AIReport
	if m.suggester == nil {
		return report, services.Wrap(services.ErrConfiguration, "ai-organize", "check provider",
			"AI suggestions are disabled; set [ai] enabled = true", nil)
	}
	records, err := m.catalog.Records(ctx)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		m.notifier.Warn(ctx, "The catalog is empty. Run scan first.")
		return report, nil
	}
	m.notifier.Info(ctx, "Requesting suggestions for %d files.", len(records))
	defer m.state.ClearProgress()

	for i := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record := records[i]
		m.state.UpdateProgress(i+1, len(records), "Suggesting "+record.Name)

		suggestion, err := m.suggester.Suggest(ctx, record.Name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			if errors.Is(err, suggest.ErrInvalidSuggestion) {
				report.Rejected++
			} else {
				report.Failed++
			}
			m.warnRecord(ctx, record, "suggestion discarded", "ai_suggestion_discarded", err)
			continue
		}
		previous := record.Series
		suggestion.Apply(&record)
		if err := m.persist(ctx, record, record.Series != previous); err != nil {
			return report, err
		}
		report.Applied++
		m.logger.Debug("suggestion applied",
			logging.String(logging.FieldRecordID, record.ID),
			logging.String("series", record.Series),
		)
	}

	if report.Rejected+report.Failed > 0 {
		m.notifier.Warn(ctx, "%d suggestions were rejected or failed.", report.Rejected+report.Failed)
	}
	m.notifier.Success(ctx, "Applied %d AI suggestions.", report.Applied)
	return report, nil
}
