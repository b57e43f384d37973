package textutil

import (
	"regexp"
	"strings"
)

var (
	segmentSeparatorReplacer = strings.NewReplacer("/", "_", "\\", "_")
	dotRunPattern            = regexp.MustCompile(`\.{2,}`)
)

// SanitizeSegment makes value safe to use as a single path element: path
// separators become underscores, runs of two or more dots collapse to one
// underscore, and surrounding whitespace is trimmed.
func SanitizeSegment(value string) string {
	value = segmentSeparatorReplacer.Replace(value)
	value = dotRunPattern.ReplaceAllString(value, "_")
	return strings.TrimSpace(value)
}
