package organizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"otakurganizer/internal/media"
	"otakurganizer/internal/textutil"
)

// Layout returns the destination directory for record relative to the
// target root.
type Layout func(record media.FileRecord) string

// SeriesLayout is the default layout: Series/Season N/Episode M. Missing
// seasons default to 1 and missing episodes land in "Episode Extras".
func SeriesLayout(record media.FileRecord) string {
	season := media.IntValue(record.Season, 1)
	episode := "Extras"
	if record.Episode != nil {
		episode = strconv.Itoa(*record.Episode)
	}
	return filepath.Join(
		textutil.SanitizeSegment(record.Series),
		textutil.SanitizeSegment("Season "+strconv.Itoa(season)),
		textutil.SanitizeSegment("Episode "+episode),
	)
}

// ContainedIn reports whether path equals root or is nested under it after
// both are made absolute and cleaned.
func ContainedIn(root, path string) (bool, error) {
	if strings.TrimSpace(root) == "" {
		return false, errors.New("target root is empty")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, fmt.Errorf("resolve root %q: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolve path %q: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false, nil
	}
	if rel == "." {
		return true, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return false, nil
	}
	return true, nil
}
