package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"otakurganizer/internal/media"
)

// Entry is the persisted projection of a file record plus its embedding.
type Entry struct {
	media.FileRecord `yaml:",inline"`
	Embedding        []float32 `json:"-" yaml:"-"`
	// Score is the cosine similarity for semantic results; zero for exact ones.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

const entryColumns = "id, path, name, series, season, episode, status, size, format, description, subtitles_json, embedding"

const upsertSQL = `INSERT INTO files (
    id, path, name, series, season, episode, status, size, format, description, subtitles_json, embedding, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    path = excluded.path,
    name = excluded.name,
    series = excluded.series,
    season = excluded.season,
    episode = excluded.episode,
    status = excluded.status,
    size = excluded.size,
    format = excluded.format,
    description = excluded.description,
    subtitles_json = excluded.subtitles_json,
    embedding = COALESCE(excluded.embedding, files.embedding),
    updated_at = excluded.updated_at`

// Upsert writes entries in one transaction. Either every entry is stored or
// none is. Existing rows keep their position in exact-search order.
func (s *Store) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertSQL)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		now := timestamp()
		for _, entry := range entries {
			subtitles, err := encodeSubtitles(entry.Subtitles)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				entry.ID,
				entry.Path,
				entry.Name,
				nullableString(entry.Series),
				nullableInt(entry.Season),
				nullableInt(entry.Episode),
				string(entry.Status),
				entry.Size,
				nullableString(entry.Format),
				nullableString(entry.Description),
				subtitles,
				encodeVector(entry.Embedding),
				now,
			); err != nil {
				return fmt.Errorf("upsert %s: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// QueryExact returns every valid row accepted by predicate in persisted
// order. A nil predicate accepts all rows.
func (s *Store) QueryExact(ctx context.Context, predicate func(media.FileRecord) bool) ([]Entry, error) {
	entries, _, err := s.queryAll(ctx)
	if err != nil {
		return nil, err
	}
	if predicate == nil {
		return entries, nil
	}
	out := entries[:0]
	for _, entry := range entries {
		if predicate(entry.FileRecord) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// queryAll returns every valid row in persisted order and the number of rows
// rejected by record validation.
func (s *Store) queryAll(ctx context.Context) ([]Entry, int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM files ORDER BY rowid`)
	if err != nil {
		return nil, 0, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// GetByIDs returns the valid rows for ids keyed by id. Unknown ids are absent.
func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]Entry, error) {
	out := make(map[string]Entry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM files WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query files by id: %w", err)
	}
	defer rows.Close()
	entries, _, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		out[entry.ID] = entry
	}
	return out, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, int, error) {
	var (
		out     []Entry
		invalid int
	)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if errors.Is(err, media.ErrInvalidRecord) {
			invalid++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate files: %w", err)
	}
	return out, invalid, nil
}

// DeleteAll removes every catalog row in one transaction and reports how
// many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM files`)
		if err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// StatusCounts returns row counts per known status, total size, and
// distinct series.
func (s *Store) StatusCounts(ctx context.Context) (map[media.Status]int, int64, int, error) {
	counts := make(map[media.Status]int)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM files GROUP BY status`)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("count statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, 0, 0, fmt.Errorf("scan status count: %w", err)
		}
		parsed, err := media.ParseStatus(status)
		if err != nil {
			continue
		}
		counts[parsed] += count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("iterate status counts: %w", err)
	}

	var totalSize sql.NullInt64
	var series int
	if err := s.db.QueryRowContext(ctx,
		`SELECT SUM(size), COUNT(DISTINCT series) FROM files`).Scan(&totalSize, &series); err != nil {
		return nil, 0, 0, fmt.Errorf("sum sizes: %w", err)
	}
	return counts, totalSize.Int64, series, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id          string
		path        string
		name        string
		series      sql.NullString
		season      sql.NullInt64
		episode     sql.NullInt64
		status      string
		size        int64
		format      sql.NullString
		description sql.NullString
		subtitles   sql.NullString
		embedding   []byte
	)
	if err := scanner.Scan(
		&id,
		&path,
		&name,
		&series,
		&season,
		&episode,
		&status,
		&size,
		&format,
		&description,
		&subtitles,
		&embedding,
	); err != nil {
		return Entry{}, err
	}

	parsed, err := media.ParseStatus(status)
	if err != nil {
		return Entry{}, fmt.Errorf("row %s: %w", id, err)
	}
	entry := Entry{
		FileRecord: media.FileRecord{
			ID:          id,
			Path:        path,
			Name:        name,
			Series:      series.String,
			Status:      parsed,
			Size:        size,
			Format:      format.String,
			Description: description.String,
		},
		Embedding: decodeVector(embedding),
	}
	if season.Valid {
		entry.Season = media.IntPtr(int(season.Int64))
	}
	if episode.Valid {
		entry.Episode = media.IntPtr(int(episode.Int64))
	}
	if subtitles.Valid && subtitles.String != "" {
		if err := json.Unmarshal([]byte(subtitles.String), &entry.Subtitles); err != nil {
			return Entry{}, fmt.Errorf("decode subtitles for %s: %w", id, err)
		}
	}
	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func encodeSubtitles(paths []string) (any, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return nil, fmt.Errorf("encode subtitles: %w", err)
	}
	return string(data), nil
}

// encodeVector packs float32 values little-endian. A nil vector stores NULL so
// updates without a fresh embedding keep the previous one.
func encodeVector(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
