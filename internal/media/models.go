package media

import "strings"

// Status represents the lifecycle of a file record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusDuplicate  Status = "duplicate"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusDuplicate,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the known statuses in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether the status is one of the known lifecycle values.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// FileRecord is one discovered media file.
type FileRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Path        string   `json:"path" yaml:"path"`
	Name        string   `json:"name" yaml:"name"`
	Format      string   `json:"format" yaml:"format"`
	Size        int64    `json:"size" yaml:"size"`
	Series      string   `json:"series,omitempty" yaml:"series,omitempty"`
	Season      *int     `json:"season,omitempty" yaml:"season,omitempty"`
	Episode     *int     `json:"episode,omitempty" yaml:"episode,omitempty"`
	Subtitles   []string `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status   `json:"status" yaml:"status"`
}

// HasSeries reports whether a non-blank series name is set.
func (r *FileRecord) HasSeries() bool {
	return r != nil && strings.TrimSpace(r.Series) != ""
}

// EmbeddingText returns the text used to derive the record's embedding vector.
func (r *FileRecord) EmbeddingText() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Name + " " + r.Series)
}

// Clone returns a deep copy of the record.
func (r FileRecord) Clone() FileRecord {
	out := r
	if r.Season != nil {
		out.Season = IntPtr(*r.Season)
	}
	if r.Episode != nil {
		out.Episode = IntPtr(*r.Episode)
	}
	if r.Subtitles != nil {
		out.Subtitles = append([]string(nil), r.Subtitles...)
	}
	return out
}

// MoveOperation records one committed file move.
type MoveOperation struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Reverse returns the operation that undoes o.
func (o MoveOperation) Reverse() MoveOperation {
	return MoveOperation{From: o.To, To: o.From}
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}

// IntValue dereferences p, returning fallback when p is nil.
func IntValue(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
