package testsupport

import (
	"testing"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/config"
	"otakurganizer/internal/embedding"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
)

// MustOpenCatalog opens the catalog configured by cfg with the hash
// vectorizer and closes its store when the test ends.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Catalog {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	vectorizer := embedding.NewHashVectorizer(cfg.Embedding.Dimensions)
	return catalog.New(store, vectorizer, logging.NewNop(), catalog.WithConcurrency(cfg.Embedding.Concurrency))
}

// NewRecord builds a valid pending record for path with an optional series.
func NewRecord(t testing.TB, path, series string) media.FileRecord {
	t.Helper()

	record, err := media.NewFileRecord(path, 1024)
	if err != nil {
		t.Fatalf("new record %s: %v", path, err)
	}
	record.Series = series
	return record
}
