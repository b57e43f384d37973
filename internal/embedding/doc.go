// Package embedding turns record text into fixed-dimension vectors.
//
// Two Vectorizer implementations are selected at startup by
// embedding.provider: a deterministic feature-hashing backend that needs no
// model or network, and an OpenAI-compatible embeddings API client. Each
// Generate call is independent so callers can fan out and isolate failures.
package embedding
