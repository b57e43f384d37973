// Package jikan looks up anime synopses from the Jikan v4 API (an unofficial
// MyAnimeList mirror). Requests are rate limited per client.
package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"otakurganizer/internal/config"
	"otakurganizer/internal/services"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "otakurganizer/1.0"
	maxErrorBody   = 512
)

// Anime is the subset of a Jikan anime entry used for enrichment.
type Anime struct {
	MalID    int    `json:"mal_id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// GenreNames flattens the genre list.
func (a Anime) GenreNames() []string {
	out := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

type searchResponse struct {
	Data []Anime `json:"data"`
}

// Client queries the Jikan search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a client from the [metadata] section.
func NewClient(cfg config.Metadata, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
	}
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the best match for title. ErrNotFound is returned when the
// API has no result or the result carries no synopsis.
func (c *Client) Search(ctx context.Context, title string) (Anime, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Anime{}, services.Wrap(services.ErrValidation, "metadata", "search", "title is empty", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/anime")
	if err != nil {
		return Anime{}, services.Wrap(services.ErrConfiguration, "metadata", "build url", c.baseURL, err)
	}
	query := endpoint.Query()
	query.Set("q", title)
	query.Set("limit", strconv.Itoa(1))
	endpoint.RawQuery = query.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return Anime{}, fmt.Errorf("jikan rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Anime{}, fmt.Errorf("jikan request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Anime{}, services.Wrap(services.ErrTransient, "metadata", "search", title, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Anime{}, services.Wrap(services.ErrNotFound, "metadata", "search", title, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Anime{}, services.Wrap(services.ErrTransient, "metadata", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Anime{}, services.Wrap(services.ErrExternalTool, "metadata", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Anime{}, services.Wrap(services.ErrExternalTool, "metadata", "decode response", title, err)
	}
	for _, anime := range parsed.Data {
		if strings.TrimSpace(anime.Synopsis) != "" {
			anime.Synopsis = strings.TrimSpace(anime.Synopsis)
			return anime, nil
		}
	}
	return Anime{}, services.Wrap(services.ErrNotFound, "metadata", "search", title, nil)
}
