package preflight

import (
	"context"

	"otakurganizer/internal/config"
	"otakurganizer/internal/embedding"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg. vectorizer may be nil, in
// which case the embedding backend is not contacted.
func RunAll(ctx context.Context, cfg *config.Config, vectorizer embedding.Vectorizer) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Catalog directory", cfg.Paths.CatalogDir),
		CheckTargetRoot(cfg.Paths.TargetRoot),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckCatalogLock(cfg.LockPath()))

	if vectorizer != nil && cfg.Embedding.Provider != config.ProviderHash {
		results = append(results, CheckVectorizer(ctx, vectorizer))
	}
	results = append(results, CheckAI(ctx, cfg), CheckMetadata(ctx, cfg))
	return results
}
