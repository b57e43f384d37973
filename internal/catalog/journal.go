package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"otakurganizer/internal/media"
)

// Journal persists committed moves in the move_log table so undo works in
// a later process. Entries pop in reverse insertion order.
type Journal struct {
	store *Store
}

// Journal returns the move journal backed by this store.
func (s *Store) Journal() *Journal {
	return &Journal{store: s}
}

// Push records one committed move.
func (j *Journal) Push(ctx context.Context, op media.MoveOperation) error {
	return retryOnBusy(ctx, func() error {
		_, err := j.store.db.ExecContext(ctx,
			`INSERT INTO move_log (from_path, to_path, created_at) VALUES (?, ?, ?)`,
			op.From, op.To, timestamp())
		if err != nil {
			return fmt.Errorf("record move %s: %w", op.To, err)
		}
		return nil
	})
}

// Pop removes and returns the most recent move. ok is false when the log is empty.
func (j *Journal) Pop(ctx context.Context) (media.MoveOperation, bool, error) {
	var (
		op    media.MoveOperation
		found bool
	)
	err := j.store.inTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		row := tx.QueryRowContext(ctx, `SELECT seq, from_path, to_path FROM move_log ORDER BY seq DESC LIMIT 1`)
		if err := row.Scan(&seq, &op.From, &op.To); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				found = false
				return nil
			}
			return fmt.Errorf("read move log: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM move_log WHERE seq = ?`, seq); err != nil {
			return fmt.Errorf("pop move log: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return media.MoveOperation{}, false, err
	}
	if !found {
		return media.MoveOperation{}, false, nil
	}
	return op, true, nil
}

// Len reports the number of pending moves.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM move_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count move log: %w", err)
	}
	return n, nil
}

// Entries lists pending moves from newest to oldest without removing them.
func (j *Journal) Entries(ctx context.Context) ([]media.MoveOperation, error) {
	rows, err := j.store.db.QueryContext(ctx, `SELECT from_path, to_path FROM move_log ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list move log: %w", err)
	}
	defer rows.Close()
	var out []media.MoveOperation
	for rows.Next() {
		var op media.MoveOperation
		if err := rows.Scan(&op.From, &op.To); err != nil {
			return nil, fmt.Errorf("scan move log: %w", err)
		}
		out = append(out, op)
	}
	return out, rows.Err()
}
