// Package metadata extracts series identity from media file names.
//
// Parse layers regular expressions from most to least explicit: SxxEyy and
// "Season n Episode m" first, the compact NxM form second, and independent
// season-only or episode-only fallbacks last. It never fails; a name with no
// recognizable markers yields a title with season and episode unset.
package metadata
