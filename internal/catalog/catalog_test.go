package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/embedding"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/testsupport"
)

type flakyVectorizer struct {
	*embedding.HashVectorizer
	failOn string
	calls  atomic.Int32
}

func (f *flakyVectorizer) Generate(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding backend unavailable")
	}
	return f.HashVectorizer.Generate(ctx, text)
}

func newFlakyCatalog(t *testing.T, failOn string) (*catalog.Catalog, *catalog.Store, *flakyVectorizer) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	vec := &flakyVectorizer{HashVectorizer: embedding.NewHashVectorizer(64), failOn: failOn}
	return catalog.New(store, vec, logging.NewNop(), catalog.WithConcurrency(2)), store, vec
}

func mediaPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func TestIndexExcludesFailedEmbeddings(t *testing.T) {
	cat, _, vec := newFlakyCatalog(t, "Broken")
	records := []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "Naruto S01E01.mkv"), "Naruto"),
		testsupport.NewRecord(t, mediaPath(t, "Broken Show S01E01.mkv"), "Broken Show"),
		testsupport.NewRecord(t, mediaPath(t, "Bleach S01E01.mkv"), "Bleach"),
	}

	report, err := cat.Index(context.Background(), records)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if report.Indexed != 2 {
		t.Fatalf("indexed = %d, want 2", report.Indexed)
	}
	if len(report.Failures) != 1 || report.Failures[0].ID != records[1].ID {
		t.Fatalf("failures = %+v, want the broken record", report.Failures)
	}
	if got := vec.calls.Load(); got != 3 {
		t.Fatalf("vectorizer calls = %d, want 3", got)
	}

	all, err := cat.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(all) != 2 || all[0].ID != records[0].ID || all[1].ID != records[2].ID {
		t.Fatalf("persisted records = %+v", all)
	}
	stats, err := cat.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Indexed != 2 || stats.TotalFiles != 2 || stats.Series != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestIndexSkipsInvalidRecords(t *testing.T) {
	cat, _, vec := newFlakyCatalog(t, "")
	bad := media.FileRecord{ID: "bad", Path: "relative.mkv", Name: "relative.mkv", Status: media.StatusPending}

	report, err := cat.Index(context.Background(), []media.FileRecord{bad})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if report.Indexed != 0 || len(report.Failures) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !errors.Is(report.Failures[0].Err, media.ErrInvalidRecord) {
		t.Fatalf("failure err = %v, want ErrInvalidRecord", report.Failures[0].Err)
	}
	if got := vec.calls.Load(); got != 0 {
		t.Fatalf("invalid record was embedded %d times", got)
	}
}

func TestExactSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	cat := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	withDescription := testsupport.NewRecord(t, mediaPath(t, "movie.mkv"), "")
	withDescription.Description = "A pirate crew sails the GRAND line"
	records := []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "One Piece 001.mkv"), "One Piece"),
		testsupport.NewRecord(t, mediaPath(t, "Naruto 001.mkv"), "Naruto"),
		withDescription,
	}
	if _, err := cat.Index(context.Background(), records); err != nil {
		t.Fatalf("Index: %v", err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "one piece", want: []string{records[0].ID}},
		{query: "NARUTO", want: []string{records[1].ID}},
		{query: "grand Line", want: []string{records[2].ID}},
		{query: "001", want: []string{records[0].ID, records[1].ID}},
		{query: "bleach", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got, err := cat.Search(context.Background(), tc.query, false)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("result %d = %s, want %s", i, got[i].ID, id)
				}
				if got[i].Score != 0 {
					t.Fatalf("exact result carries score %v", got[i].Score)
				}
			}
		})
	}
}

func TestSemanticSearchLimitsAndOrdersResults(t *testing.T) {
	cat := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	var records []media.FileRecord
	for i := range 14 {
		name := "Attack on Titan Episode " + strings.Repeat("x", i+1) + ".mkv"
		records = append(records, testsupport.NewRecord(t, mediaPath(t, name), "Attack on Titan"))
	}
	records = append(records, testsupport.NewRecord(t, mediaPath(t, "Cooking Show.mkv"), "Cooking"))
	if _, err := cat.Index(context.Background(), records); err != nil {
		t.Fatalf("Index: %v", err)
	}

	got, err := cat.Search(context.Background(), "attack on titan", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != catalog.SemanticLimit {
		t.Fatalf("got %d results, want %d", len(got), catalog.SemanticLimit)
	}
	seen := map[string]bool{}
	for i, entry := range got {
		if seen[entry.ID] {
			t.Fatalf("duplicate result %s", entry.ID)
		}
		seen[entry.ID] = true
		if entry.Series != "Attack on Titan" {
			t.Fatalf("result %d series = %q", i, entry.Series)
		}
		if i > 0 && entry.Score > got[i-1].Score {
			t.Fatalf("scores not non-increasing at %d: %v > %v", i, entry.Score, got[i-1].Score)
		}
	}

	again, err := cat.Search(context.Background(), "attack on titan", true)
	if err != nil {
		t.Fatalf("Search again: %v", err)
	}
	for i := range got {
		if again[i].ID != got[i].ID {
			t.Fatalf("semantic order not deterministic at %d", i)
		}
	}
}

func TestSemanticSearchOnEmptyCatalog(t *testing.T) {
	cat := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	got, err := cat.Search(context.Background(), "anything", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d results on empty catalog", len(got))
	}
}

func TestClearEmptiesRowsAndVectors(t *testing.T) {
	cat := testsupport.MustOpenCatalog(t, testsupport.NewConfig(t))
	records := []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "a.mkv"), "Alpha"),
		testsupport.NewRecord(t, mediaPath(t, "b.mkv"), "Beta"),
	}
	if _, err := cat.Index(context.Background(), records); err != nil {
		t.Fatalf("Index: %v", err)
	}

	removed, err := cat.Clear(context.Background())
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	stats, err := cat.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != 0 || stats.Indexed != 0 {
		t.Fatalf("stats after clear = %+v", stats)
	}
	got, err := cat.Search(context.Background(), "alpha", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("semantic search after clear returned %d results", len(got))
	}
}

func TestLoadRebuildsIndexAcrossOpens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenCatalog(t, cfg)
	records := []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "Mushishi 01.mkv"), "Mushishi"),
		testsupport.NewRecord(t, mediaPath(t, "Monster 01.mkv"), "Monster"),
	}
	if _, err := first.Index(context.Background(), records); err != nil {
		t.Fatalf("Index: %v", err)
	}

	second := testsupport.MustOpenCatalog(t, cfg)
	report, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Loaded != 2 || report.Skipped != 0 {
		t.Fatalf("load report = %+v", report)
	}
	got, err := second.Search(context.Background(), "Mushishi", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 || got[0].ID != records[0].ID {
		t.Fatalf("top result = %+v, want Mushishi", got)
	}
}

func TestLoadSkipsDimensionMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenCatalog(t, cfg)
	if _, err := first.Index(context.Background(), []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "x.mkv"), "X"),
	}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	wide := catalog.New(store, embedding.NewHashVectorizer(128), logging.NewNop())
	report, err := wide.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Loaded != 0 || report.Skipped != 1 {
		t.Fatalf("load report = %+v", report)
	}
}

func TestSaveKeepsEmbedding(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	record := testsupport.NewRecord(t, mediaPath(t, "Trigun 01.mkv"), "Trigun")
	if _, err := cat.Index(context.Background(), []media.FileRecord{record}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	record.Status = media.StatusCompleted
	record.Path = mediaPath(t, "moved.mkv")
	if err := cat.Save(context.Background(), record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened := testsupport.MustOpenCatalog(t, cfg)
	report, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Loaded != 1 {
		t.Fatalf("embedding lost after save: %+v", report)
	}
	rows, err := reopened.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if rows[0].Status != media.StatusCompleted || rows[0].Path != record.Path {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestIndexSurfacesPersistenceFailure(t *testing.T) {
	cat, store, _ := newFlakyCatalog(t, "")
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err := cat.Index(context.Background(), []media.FileRecord{
		testsupport.NewRecord(t, mediaPath(t, "Ping Pong 01.mkv"), "Ping Pong"),
	})
	if err == nil {
		t.Fatal("expected persistence failure")
	}
	got, err := cat.Search(context.Background(), "Ping Pong", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("vectors published after failed persist: %+v", got)
	}
}

func TestLoadIgnoresInvalidRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := testsupport.MustOpenCatalog(t, cfg)
	good := testsupport.NewRecord(t, mediaPath(t, "Dorohedoro 01.mkv"), "Dorohedoro")
	if _, err := cat.Index(context.Background(), []media.FileRecord{good}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	db, err := sql.Open("sqlite", cat.Store().Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	seeds := []struct {
		id, path, status string
	}{
		{id: "bad-status", path: "/library/a.mkv", status: "archived"},
		{id: "relative-path", path: "library/b.mkv", status: "pending"},
	}
	for _, seed := range seeds {
		if _, err := db.Exec(
			`INSERT INTO files (id, path, name, status, size, updated_at) VALUES (?, ?, ?, ?, 1, ?)`,
			seed.id, seed.path, filepath.Base(seed.path), seed.status, "2026-01-01T00:00:00Z",
		); err != nil {
			t.Fatalf("seed %s: %v", seed.id, err)
		}
	}

	reopened := testsupport.MustOpenCatalog(t, cfg)
	report, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Invalid != 2 || report.Loaded != 1 {
		t.Fatalf("load report = %+v", report)
	}
	rows, err := reopened.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != good.ID {
		t.Fatalf("records = %+v, want only %s", rows, good.ID)
	}
	stats, err := reopened.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if _, ok := stats.ByStatus[media.Status("archived")]; ok {
		t.Fatalf("unknown status counted: %+v", stats.ByStatus)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.CatalogPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := catalog.Open(cfg); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}
