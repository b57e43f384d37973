package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"otakurganizer/internal/config"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/services"
)

// Vectorizer produces an embedding for a piece of text.
type Vectorizer interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// New returns the Vectorizer configured by cfg.Embedding.
func New(cfg *config.Config, logger *slog.Logger, opts ...OpenAIOption) (Vectorizer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "select provider", "config is nil", nil)
	}
	logger = logging.NewComponentLogger(logger, "embedding")
	switch cfg.Embedding.Provider {
	case config.ProviderHash, "":
		logger.Debug("using hash vectorizer", logging.Int("dimensions", cfg.Embedding.Dimensions))
		return NewHashVectorizer(cfg.Embedding.Dimensions), nil
	case config.ProviderOpenAI:
		logger.Debug("using openai vectorizer",
			logging.String("model", cfg.Embedding.Model),
			logging.String("base_url", cfg.Embedding.BaseURL),
		)
		return NewOpenAIVectorizer(cfg.Embedding, opts...)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "select provider",
			fmt.Sprintf("unknown provider %q", cfg.Embedding.Provider), nil)
	}
}
