package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"otakurganizer/internal/config"
	"otakurganizer/internal/services"
)

// OpenAIVectorizer calls an OpenAI-compatible /embeddings endpoint.
type OpenAIVectorizer struct {
	client  *openai.Client
	model   string
	dims    int
	timeout time.Duration
}

// OpenAIOption customizes the OpenAI vectorizer.
type OpenAIOption func(*openai.ClientConfig)

// WithHTTPClient overrides the HTTP client used for embedding requests.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(c *openai.ClientConfig) {
		if client != nil {
			c.HTTPClient = client
		}
	}
}

// NewOpenAIVectorizer builds a client from the [embedding] section.
func NewOpenAIVectorizer(cfg config.Embedding, opts ...OpenAIOption) (*OpenAIVectorizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "init openai", "api key is required", nil)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "init openai", "model is required", nil)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.BaseURL = strings.TrimRight(base, "/")
	}
	for _, opt := range opts {
		opt(&clientConfig)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIVectorizer{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		dims:    cfg.Dimensions,
		timeout: timeout,
	}, nil
}

func (o *OpenAIVectorizer) Dimensions() int { return o.dims }

func (o *OpenAIVectorizer) Name() string { return "openai:" + o.model }

// Generate requests one embedding. Each call is bounded by the configured
// timeout.
func (o *OpenAIVectorizer) Generate(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(o.model),
		Dimensions: o.dims,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "embedding", "create embeddings",
			fmt.Sprintf("no embedding returned for model %s", o.model), nil)
	}
	vec := resp.Data[0].Embedding
	if o.dims > 0 && len(vec) != o.dims {
		return nil, services.Wrap(services.ErrValidation, "embedding", "create embeddings",
			fmt.Sprintf("model %s returned %d dimensions, want %d", o.model, len(vec), o.dims), nil)
	}
	return vec, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "embedding", "create embeddings", "request timed out", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return services.Wrap(services.ErrTransient, "embedding", "create embeddings",
				fmt.Sprintf("status %d", apiErr.HTTPStatusCode), err)
		}
		return services.Wrap(services.ErrExternalTool, "embedding", "create embeddings",
			fmt.Sprintf("status %d", apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && (reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500) {
		return services.Wrap(services.ErrTransient, "embedding", "create embeddings",
			fmt.Sprintf("status %d", reqErr.HTTPStatusCode), err)
	}
	return services.Wrap(services.ErrExternalTool, "embedding", "create embeddings", "", err)
}
