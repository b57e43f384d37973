package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidRecord marks records that violate FileRecord invariants.
var ErrInvalidRecord = errors.New("invalid file record")

// NewFileRecord builds a pending record for a file discovered on disk.
func NewFileRecord(path string, size int64) (FileRecord, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return FileRecord{}, fmt.Errorf("%w: resolve path %q: %w", ErrInvalidRecord, path, err)
	}
	name := filepath.Base(abs)
	record := FileRecord{
		ID:     uuid.NewString(),
		Path:   abs,
		Name:   name,
		Format: strings.ToLower(filepath.Ext(name)),
		Size:   size,
		Status: StatusPending,
	}
	if err := record.Validate(); err != nil {
		return FileRecord{}, err
	}
	return record, nil
}

// Validate enforces the FileRecord invariants.
func (r *FileRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("%w: %s: path is required", ErrInvalidRecord, r.ID)
	}
	if !filepath.IsAbs(r.Path) {
		return fmt.Errorf("%w: %s: path %q is not absolute", ErrInvalidRecord, r.ID, r.Path)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidRecord, r.ID)
	}
	if r.Size < 0 {
		return fmt.Errorf("%w: %s: negative size %d", ErrInvalidRecord, r.ID, r.Size)
	}
	if r.Season != nil && *r.Season < 0 {
		return fmt.Errorf("%w: %s: negative season %d", ErrInvalidRecord, r.ID, *r.Season)
	}
	if r.Episode != nil && *r.Episode < 0 {
		return fmt.Errorf("%w: %s: negative episode %d", ErrInvalidRecord, r.ID, *r.Episode)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalidRecord, r.ID, r.Status)
	}
	for _, sub := range r.Subtitles {
		if !filepath.IsAbs(sub) {
			return fmt.Errorf("%w: %s: subtitle path %q is not absolute", ErrInvalidRecord, r.ID, sub)
		}
	}
	return nil
}

// ParseStatus converts a persisted status string into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, value)
	}
	return status, nil
}
