package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case ProviderHash:
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required when embedding.provider is %q. Set OTAKU_EMBEDDING_API_KEY or edit the config", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q", ProviderHash, ProviderOpenAI, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding.dimensions must be positive")
	}
	return nil
}

func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}
	if c.AI.APIKey == "" {
		return errors.New("ai.api_key must be set when ai.enabled is true. Set OTAKU_AI_API_KEY or edit the config")
	}
	if c.AI.RateLimitRequests <= 0 {
		return errors.New("ai.rate_limit_requests must be positive")
	}
	if c.AI.RateLimitWindowSeconds <= 0 {
		return errors.New("ai.rate_limit_window_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.Metadata.OnlineEnabled && c.Metadata.RateLimitPerSecond <= 0 {
		return errors.New("metadata.rate_limit_per_second must be positive when metadata.online_enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
