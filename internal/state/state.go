package state

import (
	"context"
	"sync"
	"time"

	"otakurganizer/internal/media"
	"otakurganizer/internal/notifications"
)

// MaxLogEntries bounds the in-memory log.
const MaxLogEntries = 100

// LogEntry is one message in the application log.
type LogEntry struct {
	Time    time.Time           `json:"time"`
	Level   notifications.Level `json:"level"`
	Message string              `json:"message"`
}

// Progress tracks the running sweep.
type Progress struct {
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Message string        `json:"message"`
	Started time.Time     `json:"started"`
	Speed   float64       `json:"speed"`
	ETA     time.Duration `json:"eta"`
}

// Percent returns completion in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(100, float64(p.Current)*100/float64(p.Total))
}

// IndexStats summarizes the last index batch.
type IndexStats struct {
	Indexed     int       `json:"indexed"`
	Failed      int       `json:"failed"`
	LastIndexed time.Time `json:"last_indexed"`
}

// Snapshot is an immutable copy of the state at one version.
type Snapshot struct {
	Version  uint64             `json:"version"`
	Files    []media.FileRecord `json:"files"`
	Logs     []LogEntry         `json:"logs"`
	Progress *Progress          `json:"progress,omitempty"`
	Stats    IndexStats         `json:"stats"`
}

// Subscriber is notified after every change.
type Subscriber func(Snapshot)

// State is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	version  uint64
	files    []media.FileRecord
	logs     []LogEntry
	progress *Progress
	stats    IndexStats
	subs     map[int]Subscriber
	nextSub  int
	now      func() time.Time
}

// New returns an empty state.
func New() *State {
	return &State{subs: make(map[int]Subscriber), now: time.Now}
}

// Subscribe registers fn and returns a function that removes it.
func (s *State) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Version returns the current version.
func (s *State) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Files returns copies of the working set.
func (s *State) Files() []media.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFiles(s.files)
}

// SetFiles replaces the working set.
func (s *State) SetFiles(files []media.FileRecord) {
	s.mutate(func() {
		s.files = cloneFiles(files)
	})
}

// UpdateFile replaces the record with the same id, appending it when absent.
func (s *State) UpdateFile(record media.FileRecord) {
	s.mutate(func() {
		for i := range s.files {
			if s.files[i].ID == record.ID {
				s.files[i] = record.Clone()
				return
			}
		}
		s.files = append(s.files, record.Clone())
	})
}

// AddLog appends a log entry, dropping the oldest beyond MaxLogEntries.
func (s *State) AddLog(level notifications.Level, message string) {
	s.mutate(func() {
		s.logs = append(s.logs, LogEntry{Time: s.now(), Level: level, Message: message})
		if over := len(s.logs) - MaxLogEntries; over > 0 {
			s.logs = append([]LogEntry(nil), s.logs[over:]...)
		}
	})
}

// UpdateProgress records progress, deriving speed in items per second and
// the remaining time from the first update of the sweep.
func (s *State) UpdateProgress(current, total int, message string) {
	s.mutate(func() {
		now := s.now()
		if s.progress == nil {
			s.progress = &Progress{Started: now}
		}
		p := *s.progress
		p.Current, p.Total, p.Message = current, total, message
		p.Speed, p.ETA = 0, 0
		if elapsed := now.Sub(p.Started).Seconds(); elapsed > 0 && current > 0 {
			p.Speed = float64(current) / elapsed
			if remaining := total - current; remaining > 0 {
				p.ETA = time.Duration(float64(remaining) / p.Speed * float64(time.Second))
			}
		}
		s.progress = &p
	})
}

// ClearProgress ends the running sweep.
func (s *State) ClearProgress() {
	s.mutate(func() {
		s.progress = nil
	})
}

// SetIndexStats records the outcome of an index batch.
func (s *State) SetIndexStats(indexed, failed int) {
	s.mutate(func() {
		s.stats = IndexStats{Indexed: indexed, Failed: failed, LastIndexed: s.now()}
	})
}

// Sink exposes the log as a notification sink.
func (s *State) Sink() notifications.Sink {
	return notifications.SinkFunc(func(_ context.Context, msg notifications.Message) error {
		s.AddLog(msg.Level, msg.Text)
		return nil
	})
}

func (s *State) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	subs := make([]Subscriber, 0, len(s.subs))
	for id := range s.nextSub {
		if sub, ok := s.subs[id]; ok {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version: s.version,
		Files:   cloneFiles(s.files),
		Logs:    append([]LogEntry(nil), s.logs...),
		Stats:   s.stats,
	}
	if s.progress != nil {
		p := *s.progress
		snap.Progress = &p
	}
	return snap
}

func cloneFiles(files []media.FileRecord) []media.FileRecord {
	if files == nil {
		return nil
	}
	out := make([]media.FileRecord, len(files))
	for i, f := range files {
		out[i] = f.Clone()
	}
	return out
}
