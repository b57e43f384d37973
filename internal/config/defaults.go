package config

const (
	defaultConfigPath         = "~/.config/otakurganizer/config.toml"
	defaultCatalogDir         = "~/.local/share/otakurganizer"
	defaultLogDir             = "~/.local/share/otakurganizer/logs"
	defaultTargetRoot         = "~/Anime"
	defaultEmbeddingProvider  = ProviderHash
	defaultEmbeddingDims      = 384
	defaultEmbeddingWorkers   = 8
	defaultEmbeddingBaseURL   = "https://api.openai.com/v1"
	defaultEmbeddingModel     = "text-embedding-3-small"
	defaultEmbeddingTimeout   = 30
	defaultAIBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultAIModel            = "google/gemini-3-flash-preview"
	defaultAIReferer          = "https://github.com/otakurganizer/otakurganizer"
	defaultAITitle            = "otakurganizer"
	defaultAITimeoutSeconds   = 60
	defaultAIRateRequests     = 10
	defaultAIRateWindow       = 60
	defaultMetadataBaseURL    = "https://api.jikan.moe/v4"
	defaultMetadataTimeout    = 15
	defaultMetadataRatePerSec = 1.0
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Embedding providers accepted by embedding.provider.
const (
	ProviderHash   = "hash"
	ProviderOpenAI = "openai"
)

func defaultAllowedFormats() []string {
	return []string{".mkv", ".mp4", ".avi"}
}

func defaultSubtitleExtensions() []string {
	return []string{".srt"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir: defaultCatalogDir,
			LogDir:     defaultLogDir,
			TargetRoot: defaultTargetRoot,
		},
		Scan: Scan{
			AllowedFormats:     defaultAllowedFormats(),
			IncludeSubtitles:   true,
			SubtitleExtensions: defaultSubtitleExtensions(),
		},
		Embedding: Embedding{
			Provider:       defaultEmbeddingProvider,
			Dimensions:     defaultEmbeddingDims,
			Concurrency:    defaultEmbeddingWorkers,
			BaseURL:        defaultEmbeddingBaseURL,
			Model:          defaultEmbeddingModel,
			TimeoutSeconds: defaultEmbeddingTimeout,
		},
		AI: AI{
			BaseURL:                defaultAIBaseURL,
			Model:                  defaultAIModel,
			Referer:                defaultAIReferer,
			Title:                  defaultAITitle,
			TimeoutSeconds:         defaultAITimeoutSeconds,
			RateLimitRequests:      defaultAIRateRequests,
			RateLimitWindowSeconds: defaultAIRateWindow,
		},
		Metadata: Metadata{
			BaseURL:            defaultMetadataBaseURL,
			TimeoutSeconds:     defaultMetadataTimeout,
			RateLimitPerSecond: defaultMetadataRatePerSec,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
