package workflow

import (
	"context"
	"strings"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/services"
)

// Search queries the catalog. Semantic mode returns at most
// catalog.SemanticLimit entries ordered by similarity.
func (m *Manager) Search(ctx context.Context, query string, semantic bool) ([]catalog.Entry, error) {
	ctx = services.WithStage(ctx, "search")
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrValidation, "search", "parse query", "query is empty", nil)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	results, err := m.catalog.Search(ctx, query, semantic)
	if err != nil {
		m.notifier.Error(ctx, "Search failed: %v", err)
		return nil, err
	}
	m.logger.Debug("search finished",
		logging.String("query", query),
		logging.Bool("semantic", semantic),
		logging.Int("matches", len(results)),
	)
	m.notifier.Info(ctx, "Found %d matches for %q.", len(results), query)
	return results, nil
}

// Stats returns catalog counts.
func (m *Manager) Stats(ctx context.Context) (catalog.Stats, error) {
	if err := m.ensureLoaded(ctx); err != nil {
		return catalog.Stats{}, err
	}
	return m.catalog.Stats(ctx)
}

// Clear deletes every cataloged record and resets the vector index.
func (m *Manager) Clear(ctx context.Context) (int64, error) {
	ctx = services.WithStage(ctx, "clear")
	removed, err := m.catalog.Clear(ctx)
	if err != nil {
		m.notifier.Error(ctx, "Clearing the catalog failed: %v", err)
		return 0, err
	}
	m.state.SetFiles(nil)
	m.state.SetIndexStats(0, 0)
	m.notifier.Success(ctx, "Removed %d records from the catalog.", removed)
	return removed, nil
}
