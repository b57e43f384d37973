package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"otakurganizer/internal/embedding"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/media"
	"otakurganizer/internal/services"
	"otakurganizer/internal/textutil"
	"otakurganizer/internal/vectorindex"
)

// SemanticLimit bounds semantic search results.
const SemanticLimit = 10

const defaultConcurrency = 8

// Catalog combines the SQLite store with the in-memory vector index.
type Catalog struct {
	store       *Store
	vectorizer  embedding.Vectorizer
	index       *vectorindex.Index
	logger      *slog.Logger
	concurrency int

	// mu serializes writers and keeps rows and vectors consistent for readers.
	mu sync.RWMutex
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithConcurrency bounds concurrent embedding requests during Index.
func WithConcurrency(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New wires a catalog around an opened store.
func New(store *Store, vectorizer embedding.Vectorizer, logger *slog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		store:       store,
		vectorizer:  vectorizer,
		index:       vectorindex.New(),
		logger:      logging.NewComponentLogger(logger, "catalog"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the underlying persistence layer.
func (c *Catalog) Store() *Store {
	return c.store
}

// Failure describes one record excluded from an Index batch.
type Failure struct {
	ID   string
	Name string
	Err  error
}

// IndexReport summarizes an Index call.
type IndexReport struct {
	Indexed  int
	Failures []Failure
}

// Index embeds, persists, and indexes records. Records failing validation or
// embedding are logged and reported but do not fail the batch. A persistence
// failure is returned and leaves the vector index untouched.
func (c *Catalog) Index(ctx context.Context, records []media.FileRecord) (IndexReport, error) {
	var report IndexReport
	if len(records) == 0 {
		return report, nil
	}
	ctx = services.WithStage(ctx, "index")
	logger := logging.WithContext(ctx, c.logger)

	vectors := make([][]float32, len(records))
	errs := make([]error, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range records {
		if err := records[i].Validate(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			vec, err := c.vectorizer.Generate(gctx, records[i].EmbeddingText())
			if err != nil {
				errs[i] = err
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	entries := make([]Entry, 0, len(records))
	for i, record := range records {
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{ID: record.ID, Name: record.Name, Err: errs[i]})
			logging.WarnWithContext(logger, "record excluded from index", "index_record_failed",
				logging.String(logging.FieldRecordID, record.ID),
				logging.String("name", record.Name),
				logging.Error(errs[i]),
				logging.String(logging.FieldImpact, "record not searchable until the next scan"),
			)
			continue
		}
		entries = append(entries, Entry{FileRecord: record.Clone(), Embedding: vectors[i]})
	}
	if len(entries) == 0 {
		return report, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Upsert(ctx, entries); err != nil {
		return report, services.Wrap(services.ErrTransient, "index", "persist batch",
			fmt.Sprintf("%d records", len(entries)), err)
	}
	indexEntries := make([]vectorindex.Entry, len(entries))
	for i, entry := range entries {
		indexEntries[i] = vectorindex.Entry{ID: entry.ID, Vector: entry.Embedding}
	}
	c.index.Add(indexEntries...)
	report.Indexed = len(entries)

	logger.Info("indexed records",
		logging.Int("indexed", report.Indexed),
		logging.Int("failed", len(report.Failures)),
	)
	return report, nil
}

// Save persists changed record fields without touching stored embeddings.
func (c *Catalog) Save(ctx context.Context, records ...media.FileRecord) error {
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return services.Wrap(services.ErrValidation, "catalog", "save", record.ID, err)
		}
		entries = append(entries, Entry{FileRecord: record.Clone()})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Upsert(ctx, entries)
}

// Search runs an exact or semantic query. Exact mode matches the query
// case-insensitively against name, series, and description and returns rows
// in persisted order. Semantic mode returns up to SemanticLimit rows ordered
// by similarity.
func (c *Catalog) Search(ctx context.Context, query string, semantic bool) ([]Entry, error) {
	if semantic {
		return c.searchSemantic(ctx, query)
	}
	return c.searchExact(ctx, query)
}

func (c *Catalog) searchExact(ctx context.Context, query string) ([]Entry, error) {
	needle := textutil.Fold(strings.TrimSpace(query))
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.QueryExact(ctx, func(r media.FileRecord) bool {
		return strings.Contains(textutil.Fold(r.Name), needle) ||
			strings.Contains(textutil.Fold(r.Series), needle) ||
			strings.Contains(textutil.Fold(r.Description), needle)
	})
}

func (c *Catalog) searchSemantic(ctx context.Context, query string) ([]Entry, error) {
	vec, err := c.vectorizer.Generate(ctx, query)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "search", "embed query", "", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	matches := c.index.Search(vec, SemanticLimit)
	if len(matches) == 0 {
		return nil, nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	rows, err := c.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		entry, ok := rows[m.ID]
		if !ok {
			continue
		}
		seen[m.ID] = struct{}{}
		entry.Score = m.Score
		out = append(out, entry)
	}
	return out, nil
}

// Records returns every persisted record in catalog order.
func (c *Catalog) Records(ctx context.Context) ([]media.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, err := c.store.QueryExact(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]media.FileRecord, len(entries))
	for i, e := range entries {
		out[i] = e.FileRecord
	}
	return out, nil
}

// Stats summarizes the catalog.
type Stats struct {
	TotalFiles int                  `json:"total_files" yaml:"total_files"`
	ByStatus   map[media.Status]int `json:"by_status" yaml:"by_status"`
	Series     int                  `json:"series" yaml:"series"`
	TotalBytes int64                `json:"total_bytes" yaml:"total_bytes"`
	Indexed    int                  `json:"indexed_vectors" yaml:"indexed_vectors"`
	Vectorizer string               `json:"vectorizer" yaml:"vectorizer"`
}

// Stats returns catalog counts.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts, size, series, err := c.store.StatusCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return Stats{
		TotalFiles: total,
		ByStatus:   counts,
		Series:     series,
		TotalBytes: size,
		Indexed:    c.index.Len(),
		Vectorizer: c.vectorizer.Name(),
	}, nil
}

// Clear removes every row and vector. Readers observe either the full
// catalog or an empty one.
func (c *Catalog) Clear(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	c.index.Reset()
	c.logger.Info("catalog cleared", logging.Int64("removed", removed))
	return removed, nil
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Loaded  int
	Skipped int
	// Invalid counts persisted rows rejected by record validation.
	Invalid int
}

// Load rebuilds the vector index from persisted embeddings. Rows without an
// embedding, or whose dimension differs from the active vectorizer, are
// skipped and counted.
func (c *Catalog) Load(ctx context.Context) (LoadReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, invalid, err := c.store.queryAll(ctx)
	if err != nil {
		return LoadReport{}, err
	}
	c.index.Reset()
	report := LoadReport{Invalid: invalid}
	dims := c.vectorizer.Dimensions()
	batch := make([]vectorindex.Entry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Embedding) == 0 || (dims > 0 && len(entry.Embedding) != dims) {
			report.Skipped++
			continue
		}
		batch = append(batch, vectorindex.Entry{ID: entry.ID, Vector: entry.Embedding})
	}
	c.index.Add(batch...)
	report.Loaded = len(batch)
	if report.Skipped > 0 {
		logging.WarnWithContext(c.logger, "persisted embeddings skipped", "catalog_load_skipped",
			logging.Int("skipped", report.Skipped),
			logging.String(logging.FieldImpact, "skipped records are missing from semantic search"),
			logging.String(logging.FieldErrorHint, "rescan the library after changing embedding settings"),
		)
	}
	if report.Invalid > 0 {
		logging.WarnWithContext(c.logger, "invalid catalog rows ignored", "catalog_load_invalid",
			logging.Int("invalid", report.Invalid),
			logging.String(logging.FieldImpact, "ignored rows are hidden from search and sync"),
			logging.String(logging.FieldErrorHint, "run clear and rescan to rebuild the catalog"),
		)
	}
	return report, nil
}
