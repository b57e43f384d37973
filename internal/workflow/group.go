package workflow

import (
	"context"
	"errors"
	"strings"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/scanner"
	"otakurganizer/internal/services"
)

// GroupReport summarizes a Group pass.
type GroupReport struct {
	Grouped   int
	Described int
	Unmatched int
}

// Group fills missing series from the closest semantic match that has one,
// then fetches a synopsis for records without a description when an
// enricher is configured. Status is left untouched.
func (m *Manager) Group(ctx context.Context) (GroupReport, error) {
	ctx = services.WithStage(ctx, "group")
	var report GroupReport
	if err := m.ensureLoaded(ctx); err != nil {
		return report, err
	}
	records, err := m.catalog.Records(ctx)
	if err != nil {
		return report, err
	}
	if len(records) == 0 {
		m.notifier.Warn(ctx, "The catalog is empty. Run scan first.")
		return report, nil
	}
	m.notifier.Info(ctx, "Grouping %d files.", len(records))
	defer m.state.ClearProgress()

	for i := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record := records[i]
		m.state.UpdateProgress(i+1, len(records), "Grouping "+record.Name)
		changed, reembed := false, false

		if !record.HasSeries() {
			series, err := m.nearestSeries(ctx, record)
			switch {
			case err != nil:
				m.warnRecord(ctx, record, "series lookup failed", "group_lookup_failed", err)
			case series == "":
				report.Unmatched++
			default:
				record.Series = series
				report.Grouped++
				changed, reembed = true, true
			}
		}

		if m.enricher != nil && strings.TrimSpace(record.Description) == "" && record.HasSeries() {
			anime, err := m.enricher.Search(ctx, record.Series)
			switch {
			case errors.Is(err, services.ErrNotFound):
				m.logger.Debug("no synopsis found", logging.String("series", record.Series))
			case err != nil:
				m.warnRecord(ctx, record, "description lookup failed", "group_enrich_failed", err)
			default:
				record.Description = anime.Synopsis
				report.Described++
				changed = true
			}
		}

		if !changed {
			continue
		}
		if err := m.persist(ctx, record, reembed); err != nil {
			return report, err
		}
	}

	m.notifier.Success(ctx, "Grouped %d files and added %d descriptions.", report.Grouped, report.Described)
	return report, nil
}

// nearestSeries returns the series of the most similar other record, or ""
// when none of the semantic matches carries one. Release tags and quality
// markers are stripped from the query name.
func (m *Manager) nearestSeries(ctx context.Context, record media.FileRecord) (string, error) {
	query := scanner.NormalizeName(record.Name)
	if query == "" {
		return "", nil
	}
	matches, err := m.catalog.Search(ctx, query, true)
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if match.ID == record.ID || !match.HasSeries() {
			continue
		}
		return match.Series, nil
	}
	return "", nil
}

// persist stores record. When reembed is set the record goes through
// Index so its vector tracks the new embedding text; an embedding failure
// falls back to a plain save that keeps the previous vector.
func (m *Manager) persist(ctx context.Context, record media.FileRecord, reembed bool) error {
	if reembed {
		report, err := m.catalog.Index(ctx, []media.FileRecord{record})
		if err != nil {
			return err
		}
		if report.Indexed == 1 {
			m.state.UpdateFile(record)
			return nil
		}
	}
	if err := m.catalog.Save(ctx, record); err != nil {
		return err
	}
	m.state.UpdateFile(record)
	return nil
}

func (m *Manager) warnRecord(ctx context.Context, record media.FileRecord, msg, event string, err error) {
	logging.WarnWithContext(logging.WithContext(services.WithRecordID(ctx, record.ID), m.logger), msg, event,
		logging.String("name", record.Name),
		logging.Error(err),
		logging.String(logging.FieldImpact, "record left unchanged"),
	)
}
