package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"otakurganizer/internal/config"
	"otakurganizer/internal/logging"
	"otakurganizer/internal/services"
)

func newEmbeddingServer(t *testing.T, status int, dims int) (*httptest.Server, *[]string) {
	t.Helper()
	var inputs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		inputs = append(inputs, req.Input...)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		vec := make([]float32, dims)
		for i := range vec {
			vec[i] = float32(i + 1)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vec}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &inputs
}

func openAIConfig(baseURL string, dims int) *config.Config {
	cfg := config.Default()
	cfg.Embedding.Provider = config.ProviderOpenAI
	cfg.Embedding.APIKey = "test-key"
	cfg.Embedding.BaseURL = baseURL
	cfg.Embedding.Dimensions = dims
	return &cfg
}

func TestOpenAIVectorizerGenerate(t *testing.T) {
	srv, inputs := newEmbeddingServer(t, http.StatusOK, 4)
	v, err := New(openAIConfig(srv.URL, 4), logging.NewNop(), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v.Dimensions() != 4 || !strings.HasPrefix(v.Name(), "openai:") {
		t.Fatalf("unexpected vectorizer %s/%d", v.Name(), v.Dimensions())
	}
	vec, err := v.Generate(context.Background(), "Frieren 12")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vec) != 4 || vec[3] != 4 {
		t.Fatalf("unexpected vector %v", vec)
	}
	if len(*inputs) != 1 || (*inputs)[0] != "Frieren 12" {
		t.Fatalf("unexpected inputs %v", *inputs)
	}
}

func TestOpenAIVectorizerDimensionMismatch(t *testing.T) {
	srv, _ := newEmbeddingServer(t, http.StatusOK, 3)
	v, err := New(openAIConfig(srv.URL, 4), nil, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := v.Generate(context.Background(), "x"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOpenAIVectorizerServerErrorIsTransient(t *testing.T) {
	srv, _ := newEmbeddingServer(t, http.StatusInternalServerError, 4)
	cfg := openAIConfig(srv.URL, 4)
	v, err := NewOpenAIVectorizer(cfg.Embedding, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewOpenAIVectorizer: %v", err)
	}
	if _, err := v.Generate(context.Background(), "x"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	v, err := New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := v.(*HashVectorizer); !ok {
		t.Fatalf("expected hash vectorizer, got %T", v)
	}

	cfg.Embedding.Provider = "bert"
	if _, err := New(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	cfg.Embedding.Provider = config.ProviderOpenAI
	cfg.Embedding.APIKey = ""
	if _, err := New(&cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration without api key, got %v", err)
	}
}
