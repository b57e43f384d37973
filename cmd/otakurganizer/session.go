package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/config"
	"otakurganizer/internal/embedding"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/notifications"
	"otakurganizer/internal/organizer"
	"otakurganizer/internal/scanner"
	"otakurganizer/internal/services/jikan"
	"otakurganizer/internal/services/llm"
	"otakurganizer/internal/state"
	"otakurganizer/internal/suggest"
	"otakurganizer/internal/workflow"
)

// session is everything one command invocation needs, opened in dependency
// order and released by Close.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	state      *state.State
	vectorizer embedding.Vectorizer
	store      *catalog.Store
	catalog    *catalog.Catalog
	manager    *workflow.Manager

	lock        *flock.Flock
	progress    *progressRenderer
	unsubscribe func()
}

// openSession wires the workflow for cmd. Mutating sessions take the
// catalog lock first and fail fast when another process holds it.
func (c *commandContext) openSession(cmd *cobra.Command, mutating bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, state: state.New()}
	if mutating {
		s.lock = flock.New(cfg.LockPath())
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire catalog lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another otakurganizer command is modifying the catalog (lock %s)", cfg.LockPath())
		}
	}

	base, err := logging.NewFromConfig(cfg)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init logging: %w", err)
	}
	s.logger = logging.TeeLogger(base, state.NewHandler(s.state, slog.LevelWarn))

	s.vectorizer, err = embedding.New(cfg, s.logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.store, err = catalog.Open(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.catalog = catalog.New(s.store, s.vectorizer, s.logger, catalog.WithConcurrency(cfg.Embedding.Concurrency))

	stderr := cmd.ErrOrStderr()
	s.progress = newProgressRenderer(stderr, isTerminal(stderr))
	s.unsubscribe = s.state.Subscribe(s.progress.update)

	deps := workflow.Dependencies{
		Catalog: s.catalog,
		Scanner: scanner.New(cfg, s.logger, scanner.WithProgress(func(found int) {
			s.state.UpdateProgress(found, 0, "Scanning")
		})),
		Mover:    organizer.New(s.store.Journal(), s.logger),
		State:    s.state,
		Notifier: notifications.NewFromConfig(cfg, s.logger, notifications.NewConsoleSink(stderr), s.state.Sink()),
	}
	if cfg.AI.Enabled {
		deps.Suggester = suggest.NewLLMProvider(llm.NewConfiguredClient(cfg), s.logger)
	}
	if cfg.Metadata.OnlineEnabled {
		deps.Enricher = jikan.NewClient(cfg.Metadata)
	}
	s.manager = workflow.NewManager(cfg, deps, s.logger)
	return s, nil
}

// Close releases the session in reverse order of acquisition.
func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.progress != nil {
		s.progress.finish()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close catalog: %w", err))
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release catalog lock: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withSession opens a session for cmd, runs fn, and closes it.
func (c *commandContext) withSession(cmd *cobra.Command, mutating bool, fn func(*session) error) (err error) {
	s, err := c.openSession(cmd, mutating)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}
