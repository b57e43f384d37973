// Package llm provides an OpenRouter chat client that returns JSON payloads.
//
// The suggestion provider uses it to ask a model for series, season, and
// episode of a filename. Callers validate the decoded payload themselves.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Retry-After headers are honoured. Context
// cancellation aborts retries immediately.
//
// # Rate Limiting
//
// NewConfiguredClient applies ai.rate_limit_requests per
// ai.rate_limit_window_seconds through a token bucket. Every attempt,
// retries included, takes a token.
package llm
