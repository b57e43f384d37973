package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"otakurganizer/internal/fileutil"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
)

// Mover organizes records on disk and records each committed move.
type Mover struct {
	journal Journal
	layout  Layout
	logger  *slog.Logger
	ops     fileOps
}

// Option customizes a Mover.
type Option func(*Mover)

// WithLayout replaces SeriesLayout.
func WithLayout(layout Layout) Option {
	return func(m *Mover) {
		if layout != nil {
			m.layout = layout
		}
	}
}

// WithRename swaps the rename primitive, letting tests simulate
// cross-device failures.
func WithRename(rename func(oldpath, newpath string) error) Option {
	return func(m *Mover) {
		if rename != nil {
			m.ops.rename = rename
		}
	}
}

// WithRemove swaps the delete primitive used after cross-device copies.
func WithRemove(remove func(path string) error) Option {
	return func(m *Mover) {
		if remove != nil {
			m.ops.remove = remove
		}
	}
}

// New builds a Mover. A nil journal selects a MemoryJournal.
func New(journal Journal, logger *slog.Logger, opts ...Option) *Mover {
	if journal == nil {
		journal = NewMemoryJournal()
	}
	m := &Mover{
		journal: journal,
		layout:  SeriesLayout,
		logger:  logging.NewComponentLogger(logger, "organizer"),
		ops:     defaultFileOps(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Journal exposes the undo log.
func (m *Mover) Journal() Journal {
	return m.journal
}

// SubtitleFailure reports a subtitle that stayed behind.
type SubtitleFailure struct {
	Path string
	Err  error
}

// Result describes one Organize call. Record is the updated copy of the
// input: its Path, Subtitles, and Status reflect what happened on disk.
type Result struct {
	Record           media.FileRecord
	Destination      string
	DryRun           bool
	Skipped          bool
	Moves            []media.MoveOperation
	SubtitleFailures []SubtitleFailure
}

// Organize places record under targetRoot.
//
// Records without a series are skipped with a warning and keep their status.
// A destination outside targetRoot is refused without touching the
// filesystem and marks the record failed. An existing destination file marks
// it duplicate. A dry run only computes Destination. Subtitle failures are
// reported in the result and do not prevent completion once the primary
// file has moved.
func (m *Mover) Organize(ctx context.Context, record media.FileRecord, targetRoot string, dryRun bool) (Result, error) {
	ctx = services.WithRecordID(services.WithStage(ctx, "organize"), record.ID)
	logger := logging.WithContext(ctx, m.logger)
	result := Result{Record: record.Clone(), DryRun: dryRun}

	if !record.HasSeries() {
		logging.WarnWithContext(logger, "record has no series, skipping", "organize_missing_series",
			logging.String("name", record.Name),
			logging.String(logging.FieldImpact, "file left in place"),
			logging.String(logging.FieldErrorHint, "run group or ai-organize to assign a series"),
		)
		result.Skipped = true
		return result, nil
	}

	destDir := filepath.Join(targetRoot, m.layout(record))
	contained, err := ContainedIn(targetRoot, destDir)
	if err != nil {
		return m.fail(&result, services.Wrap(services.ErrConfiguration, "organize", "check containment", destDir, err))
	}
	if !contained {
		logger.Error("destination escapes target root",
			logging.String("destination", destDir),
			logging.String("target_root", targetRoot),
			logging.String(logging.FieldEventType, "organize_outside_root"),
			logging.Alert("path_traversal"),
		)
		return m.fail(&result, services.Wrap(services.ErrOutsideRoot, "organize", "check containment", destDir, nil))
	}

	dest := filepath.Join(destDir, filepath.Base(record.Path))
	result.Destination = dest
	if dryRun {
		logger.Info("dry run destination", logging.String("from", record.Path), logging.String("to", dest))
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return m.fail(&result, services.Wrap(services.ErrTransient, "organize", "create destination", destDir, err))
	}
	if fileutil.Exists(dest) {
		logging.WarnWithContext(logger, "destination already exists", "organize_duplicate",
			logging.String("destination", dest),
			logging.String(logging.FieldImpact, "file left in place and marked duplicate"),
		)
		return m.fail(&result, services.Wrap(services.ErrDuplicate, "organize", "check destination", dest, nil))
	}

	primary := media.MoveOperation{From: record.Path, To: dest}
	if err := m.commit(ctx, primary); err != nil {
		return m.fail(&result, err)
	}
	result.Moves = append(result.Moves, primary)
	result.Record.Path = dest

	result.Record.Subtitles = result.Record.Subtitles[:0]
	for i, sub := range record.Subtitles {
		if err := ctx.Err(); err != nil {
			for _, rest := range record.Subtitles[i:] {
				result.SubtitleFailures = append(result.SubtitleFailures, SubtitleFailure{Path: rest, Err: err})
				result.Record.Subtitles = append(result.Record.Subtitles, rest)
			}
			break
		}
		op := media.MoveOperation{From: sub, To: filepath.Join(destDir, filepath.Base(sub))}
		if err := m.moveSubtitle(ctx, op); err != nil {
			logging.WarnWithContext(logger, "subtitle move failed", "organize_subtitle_failed",
				logging.String("subtitle", sub),
				logging.Error(err),
				logging.String(logging.FieldImpact, "subtitle stays next to the original location"),
			)
			result.SubtitleFailures = append(result.SubtitleFailures, SubtitleFailure{Path: sub, Err: err})
			result.Record.Subtitles = append(result.Record.Subtitles, sub)
			continue
		}
		result.Moves = append(result.Moves, op)
		result.Record.Subtitles = append(result.Record.Subtitles, op.To)
	}
	if len(result.Record.Subtitles) == 0 {
		result.Record.Subtitles = nil
	}

	result.Record.Status = media.StatusCompleted
	logger.Info("organized file",
		logging.String("from", primary.From),
		logging.String("to", primary.To),
		logging.Int("subtitles_moved", len(result.Moves)-1),
		logging.Int("subtitles_failed", len(result.SubtitleFailures)),
	)
	return result, nil
}

func (m *Mover) moveSubtitle(ctx context.Context, op media.MoveOperation) error {
	if fileutil.Exists(op.To) {
		return services.Wrap(services.ErrDuplicate, "organize", "check subtitle destination", op.To, nil)
	}
	return m.commit(ctx, op)
}

// commit moves one file and journals it. A journal failure after the file
// moved is logged but the move is kept, since reversing it could fail too.
func (m *Mover) commit(ctx context.Context, op media.MoveOperation) error {
	if err := m.safeMove(op.From, op.To); err != nil {
		return err
	}
	if err := m.journal.Push(context.WithoutCancel(ctx), op); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, m.logger), "move not journaled", "journal_push_failed",
			logging.String("from", op.From),
			logging.String("to", op.To),
			logging.Error(err),
			logging.String(logging.FieldImpact, "undo cannot restore this file"),
		)
	}
	return nil
}

func (m *Mover) fail(result *Result, err error) (Result, error) {
	result.Record.Status = services.FailureStatus(err)
	return *result, err
}

// UndoReport summarizes an Undo sweep.
type UndoReport struct {
	Restored []media.MoveOperation
	Missing  []media.MoveOperation
	Failures []UndoFailure
	Empty    bool
}

// UndoFailure is one reversal that did not succeed.
type UndoFailure struct {
	Operation media.MoveOperation
	Err       error
}

// Undo drains the journal newest first, moving each file back where it came
// from. Entries whose destination vanished are dropped. Failures are logged
// and reported; draining continues and nothing is retried or re-pushed. An
// empty journal is a no-op that logs a warning. Cancellation stops the sweep
// between entries, leaving the rest journaled.
func (m *Mover) Undo(ctx context.Context) (UndoReport, error) {
	ctx = services.WithStage(ctx, "undo")
	logger := logging.WithContext(ctx, m.logger)
	var report UndoReport

	pending, err := m.journal.Len(ctx)
	if err != nil {
		return report, fmt.Errorf("read undo log: %w", err)
	}
	if pending == 0 {
		logging.WarnWithContext(logger, "nothing to undo", "undo_empty",
			logging.String(logging.FieldImpact, "no files moved"),
		)
		report.Empty = true
		return report, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		op, ok, err := m.journal.Pop(ctx)
		if err != nil {
			return report, fmt.Errorf("pop undo log: %w", err)
		}
		if !ok {
			break
		}
		m.reverse(logger, op, &report)
	}

	logger.Info("undo finished",
		logging.Int("restored", len(report.Restored)),
		logging.Int("missing", len(report.Missing)),
		logging.Int("failed", len(report.Failures)),
	)
	return report, nil
}

func (m *Mover) reverse(logger *slog.Logger, op media.MoveOperation, report *UndoReport) {
	if !fileutil.Exists(op.To) {
		logging.WarnWithContext(logger, "moved file no longer present", "undo_missing",
			logging.String("path", op.To),
			logging.String(logging.FieldImpact, "entry dropped from the undo log"),
		)
		report.Missing = append(report.Missing, op)
		return
	}
	err := m.restore(op)
	if err != nil {
		logging.WarnWithContext(logger, "undo failed", "undo_failed",
			logging.String("from", op.To),
			logging.String("to", op.From),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file stays in the organized location"),
		)
		report.Failures = append(report.Failures, UndoFailure{Operation: op, Err: err})
		return
	}
	logger.Info("restored file", logging.String("from", op.To), logging.String("to", op.From))
	report.Restored = append(report.Restored, op)
}

func (m *Mover) restore(op media.MoveOperation) error {
	if err := os.MkdirAll(filepath.Dir(op.From), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "undo", "recreate source directory", filepath.Dir(op.From), err)
	}
	if fileutil.Exists(op.From) {
		return services.Wrap(services.ErrDuplicate, "undo", "check original path", op.From, nil)
	}
	reverse := op.Reverse()
	return m.safeMove(reverse.From, reverse.To)
}
