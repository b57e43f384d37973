package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"otakurganizer/internal/config"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
)

// ProgressFunc receives the running count of matched videos.
type ProgressFunc func(found int)

// Scanner discovers media files according to the [scan] configuration.
type Scanner struct {
	cfg      *config.Config
	logger   *slog.Logger
	progress ProgressFunc
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithProgress installs a callback invoked after each matched video.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) { s.progress = fn }
}

// New constructs a Scanner from the scan configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Scanner {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	s := &Scanner{cfg: cfg, logger: logging.NewComponentLogger(logger, "scanner")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and returns one pending record per allowed video file,
// ordered by path. Hidden directories are skipped. Unreadable entries are
// logged and skipped; a missing or non-directory root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]media.FileRecord, error) {
	abs, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "resolve root", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "scan", "stat root", abs, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "scan", "stat root", abs+" is not a directory", nil)
	}

	s.logger.Info("scanning directory", logging.String("root", abs))

	records := make([]media.FileRecord, 0, 64)
	subtitles := map[string][]string{}
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == abs {
				return err
			}
			logging.WarnWithContext(s.logger, "skipping unreadable entry", "scan_entry_unreadable",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "entry not cataloged"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if s.cfg.Scan.IncludeSubtitles && s.cfg.IsSubtitleExtension(ext) {
			dir := filepath.Dir(path)
			subtitles[dir] = append(subtitles[dir], path)
			return nil
		}
		if !s.cfg.AllowsFormat(ext) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping file without stat", "scan_stat_failed",
				logging.String("path", path),
				logging.Error(err),
			)
			return nil
		}
		record, err := media.NewFileRecord(path, fileInfo.Size())
		if err != nil {
			return err
		}
		records = append(records, record)
		if s.progress != nil {
			s.progress(len(records))
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", abs, walkErr)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	if s.cfg.Scan.IncludeSubtitles {
		for i := range records {
			records[i].Subtitles = matchSubtitles(records[i].Path, subtitles[filepath.Dir(records[i].Path)])
		}
	}

	s.logger.Info("scan complete",
		logging.String("root", abs),
		logging.Int("videos", len(records)),
	)
	return records, nil
}

// matchSubtitles keeps candidates named after the video: "Show 01.srt" and
// "Show 01.en.srt" match "Show 01.mkv", while "Show 010.srt" does not.
func matchSubtitles(videoPath string, candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	var out []string
	for _, candidate := range candidates {
		rest, ok := strings.CutPrefix(filepath.Base(candidate), base)
		if ok && strings.HasPrefix(rest, ".") {
			out = append(out, candidate)
		}
	}
	sort.Strings(out)
	return out
}

var (
	bracketTagPattern = regexp.MustCompile(`\[[^\]]*\]`)
	parenTagPattern   = regexp.MustCompile(`\([^)]*\)`)
	extensionPattern  = regexp.MustCompile(`\.[^/.]+$`)
	nameSeparators    = strings.NewReplacer("_", " ", "-", " ")
)

// NormalizeName strips release-group tags, parenthesized quality markers,
// separators, and the extension from a file name.
func NormalizeName(name string) string {
	name = bracketTagPattern.ReplaceAllString(name, "")
	name = parenTagPattern.ReplaceAllString(name, "")
	name = nameSeparators.Replace(name)
	name = extensionPattern.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.Join(strings.Fields(name), " ")
}
