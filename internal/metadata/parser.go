package metadata

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Result is the identity extracted from a file name.
type Result struct {
	Title   string
	Season  *int
	Episode *int
}

// Movie reports whether no season or episode marker was found.
func (r Result) Movie() bool {
	return r.Season == nil && r.Episode == nil
}

var (
	compactExplicitPattern = regexp.MustCompile(`(?i)\bS(\d{1,2})E(\d{1,3})\b`)
	verboseExplicitPattern = regexp.MustCompile(`(?i)\bSeason\s*(\d+)\s*[-_.,]?\s*Episode\s*(\d+)\b`)
	// The leading word boundary keeps resolution strings such as 1280x720 out.
	crossPattern = regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{1,3})\b`)

	seasonOnlyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bS(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\bSeason\s*(\d+)\b`),
	}
	episodeOnlyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bE(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\b(?:Episode|Ep)\.?\s*(\d+)\b`),
		regexp.MustCompile(`\s-\s(\d{1,3})(?:\s|\[|\(|\.|$)`),
	}

	bracketPattern     = regexp.MustCompile(`\[[^\]]*\]`)
	parenPattern       = regexp.MustCompile(`\([^)]*\)`)
	separatorReplacer  = strings.NewReplacer("-", " ")
	maxExtensionLength = 5
)

// marker is one regexp hit: the span start and the captured number.
type marker struct {
	start int
	value int
}

// Parse extracts a title, season, and episode from a file name or path. Only
// the base name is considered.
func Parse(fileName string) Result {
	stem := stripExtension(filepath.Base(strings.TrimSpace(fileName)))
	// Underscores are word characters to RE2; treat them as separators so
	// "Show_S01E02" still matches the word-bounded patterns.
	stem = strings.ReplaceAll(stem, "_", " ")

	cut := -1
	var season, episode *int

	if s, e, start, ok := matchPair(stem, compactExplicitPattern, verboseExplicitPattern); ok {
		season, episode, cut = &s, &e, start
	} else if s, e, start, ok := matchPair(stem, crossPattern); ok {
		season, episode, cut = &s, &e, start
	} else {
		if m, ok := firstMarker(stem, seasonOnlyPatterns); ok {
			v := m.value
			season, cut = &v, m.start
		}
		if m, ok := firstMarker(stem, episodeOnlyPatterns); ok {
			v := m.value
			episode = &v
			if cut < 0 || m.start < cut {
				cut = m.start
			}
			if season == nil {
				one := 1
				season = &one
			}
		}
	}

	title := stem
	if cut >= 0 {
		title = stem[:cut]
	}
	return Result{Title: cleanTitle(title), Season: season, Episode: episode}
}

// matchPair returns the earliest two-number match across patterns.
func matchPair(name string, patterns ...*regexp.Regexp) (int, int, int, bool) {
	best := -1
	var season, episode int
	for _, pattern := range patterns {
		loc := pattern.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		if best >= 0 && loc[0] >= best {
			continue
		}
		s, errS := strconv.Atoi(name[loc[2]:loc[3]])
		e, errE := strconv.Atoi(name[loc[4]:loc[5]])
		if errS != nil || errE != nil {
			continue
		}
		best, season, episode = loc[0], s, e
	}
	if best < 0 {
		return 0, 0, 0, false
	}
	return season, episode, best, true
}

// firstMarker returns the first hit, honouring pattern priority order.
func firstMarker(name string, patterns []*regexp.Regexp) (marker, bool) {
	for _, pattern := range patterns {
		loc := pattern.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		value, err := strconv.Atoi(name[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		return marker{start: loc[0], value: value}, true
	}
	return marker{}, false
}

func stripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name || len(ext) > maxExtensionLength || strings.ContainsAny(ext, " []()") {
		return name
	}
	// "Show.E05" has no extension; the dotted suffix is an episode marker.
	if episodeOnlyPatterns[0].MatchString(ext[1:]) {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func cleanTitle(value string) string {
	value = bracketPattern.ReplaceAllString(value, " ")
	value = parenPattern.ReplaceAllString(value, " ")
	value = separatorReplacer.Replace(value)
	value = strings.Join(strings.Fields(value), " ")
	return strings.Trim(value, " .")
}
