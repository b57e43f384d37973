package organizer

import (
	"context"
	"sync"

	"otakurganizer/internal/media"
)

// Journal is the LIFO log of committed moves. The catalog store provides a
// persistent implementation; MemoryJournal serves single-process use.
type Journal interface {
	Push(ctx context.Context, op media.MoveOperation) error
	Pop(ctx context.Context) (media.MoveOperation, bool, error)
	Len(ctx context.Context) (int, error)
}

// MemoryJournal keeps moves in memory.
type MemoryJournal struct {
	mu  sync.Mutex
	ops []media.MoveOperation
}

// NewMemoryJournal returns an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Push(_ context.Context, op media.MoveOperation) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
	return nil
}

func (j *MemoryJournal) Pop(_ context.Context) (media.MoveOperation, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.ops) == 0 {
		return media.MoveOperation{}, false, nil
	}
	last := j.ops[len(j.ops)-1]
	j.ops = j.ops[:len(j.ops)-1]
	return last, true, nil
}

func (j *MemoryJournal) Len(context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.ops), nil
}
