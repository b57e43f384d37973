package workflow

import (
	"context"
	"log/slog"
	"sync"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/config"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/notifications"
	"otakurganizer/internal/organizer"
	"otakurganizer/internal/scanner"
	"otakurganizer/internal/services/jikan"
	"otakurganizer/internal/state"
	"otakurganizer/internal/suggest"
)

// Enricher fetches a synopsis for a title.
type Enricher interface {
	Search(ctx context.Context, title string) (jikan.Anime, error)
}

// Dependencies are the collaborators a Manager drives. Suggester and
// Enricher are optional.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Scanner   *scanner.Scanner
	Mover     *organizer.Mover
	Suggester suggest.Provider
	Enricher  Enricher
	State     *state.State
	Notifier  *notifications.Notifier
}

// Manager coordinates command pipelines.
type Manager struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	scanner   *scanner.Scanner
	mover     *organizer.Mover
	suggester suggest.Provider
	enricher  Enricher
	state     *state.State
	notifier  *notifications.Notifier
	logger    *slog.Logger

	loadOnce sync.Once
	loadErr  error
}

// NewManager builds a Manager. Missing state and notifier default to fresh,
// silent instances.
func NewManager(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:       cfg,
		catalog:   deps.Catalog,
		scanner:   deps.Scanner,
		mover:     deps.Mover,
		suggester: deps.Suggester,
		enricher:  deps.Enricher,
		state:     deps.State,
		notifier:  deps.Notifier,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
	if m.state == nil {
		m.state = state.New()
	}
	if m.notifier == nil {
		m.notifier = notifications.New(logger)
	}
	if m.scanner == nil {
		m.scanner = scanner.New(cfg, logger)
	}
	if m.mover == nil {
		m.mover = organizer.New(nil, logger)
	}
	return m
}

// State returns the application state the manager reports into.
func (m *Manager) State() *state.State {
	return m.state
}

// ensureLoaded rehydrates the vector index from the catalog once per Manager.
func (m *Manager) ensureLoaded(ctx context.Context) error {
	m.loadOnce.Do(func() {
		report, err := m.catalog.Load(ctx)
		if err != nil {
			m.loadErr = err
			return
		}
		m.logger.Debug("vector index loaded",
			logging.Int("loaded", report.Loaded),
			logging.Int("skipped", report.Skipped),
		)
	})
	return m.loadErr
}

// refreshFiles mirrors the catalog into the application state.
func (m *Manager) refreshFiles(ctx context.Context) {
	records, err := m.catalog.Records(ctx)
	if err != nil {
		m.logger.Debug("state refresh skipped", logging.Error(err))
		return
	}
	m.state.SetFiles(records)
}
