package workflow

import (
	"context"
	"fmt"
	"strings"

	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/metadata"
	"otakurganizer/internal/services"
)

// ScanReport summarizes a Scan.
type ScanReport struct {
	Found    int
	Indexed  int
	Failed   int
	Existing int
}

// Scan discovers videos under dir, parses their names, and indexes them.
// Files already cataloged at the same path keep their id, status, and
// identity instead of being parsed again.
func (m *Manager) Scan(ctx context.Context, dir string) (ScanReport, error) {
	ctx = services.WithStage(ctx, "scan")
	var report ScanReport
	if err := m.ensureLoaded(ctx); err != nil {
		return report, err
	}
	m.notifier.Info(ctx, "Scanning: %s", dir)
	defer m.state.ClearProgress()

	records, err := m.scanner.Scan(ctx, dir)
	if err != nil {
		m.notifier.Error(ctx, "Scan failed: %v", err)
		return report, err
	}
	report.Found = len(records)

	known, err := m.knownByPath(ctx)
	if err != nil {
		return report, err
	}
	for i := range records {
		existing, ok := known[records[i].Path]
		if !ok {
			Enrich(&records[i])
			continue
		}
		records[i].ID = existing.ID
		records[i].Status = existing.Status
		records[i].Series = existing.Series
		records[i].Season = existing.Season
		records[i].Episode = existing.Episode
		records[i].Description = existing.Description
		report.Existing++
	}

	indexed, err := m.catalog.Index(ctx, records)
	if err != nil {
		m.notifier.Error(ctx, "Indexing failed: %v", err)
		return report, err
	}
	report.Indexed = indexed.Indexed
	report.Failed = len(indexed.Failures)
	m.state.SetIndexStats(report.Indexed, report.Failed)
	m.refreshFiles(ctx)

	if report.Failed > 0 {
		m.notifier.Warn(ctx, "%d files could not be indexed.", report.Failed)
	}
	m.notifier.Success(ctx, "Scanned and indexed %d files.", report.Indexed)
	m.logger.Info("scan finished",
		logging.Int("found", report.Found),
		logging.Int("indexed", report.Indexed),
		logging.Int("failed", report.Failed),
		logging.Int("already_cataloged", report.Existing),
	)
	return report, nil
}

// Enrich applies the parsed identity of record.Name to record. A parsed
// title becomes the series; season and episode are replaced wholesale so a
// movie stays without either.
func Enrich(record *media.FileRecord) {
	parsed := metadata.Parse(record.Name)
	if title := strings.TrimSpace(parsed.Title); title != "" {
		record.Series = title
	}
	record.Season = parsed.Season
	record.Episode = parsed.Episode
}

func (m *Manager) knownByPath(ctx context.Context) (map[string]media.FileRecord, error) {
	records, err := m.catalog.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	out := make(map[string]media.FileRecord, len(records))
	for _, r := range records {
		out[r.Path] = r
	}
	return out, nil
}
