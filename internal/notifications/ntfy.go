package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"otakurganizer/internal/config"
)

const userAgent = "otakurganizer/1.0"

// NtfySink pushes warnings, errors, and successes to an ntfy topic URL.
// Info messages stay local.
type NtfySink struct {
	endpoint string
	client   *http.Client
}

// NewNtfySink returns nil when no topic is configured.
func NewNtfySink(cfg config.Notifications) *NtfySink {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return nil
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySink{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

func (n *NtfySink) Deliver(ctx context.Context, msg Message) error {
	if n == nil || msg.Level == LevelInfo {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.Text))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	title, tags, priority := ntfyHeaders(msg.Level)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", title)
	req.Header.Set("Tags", tags)
	if priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func ntfyHeaders(level Level) (title, tags, priority string) {
	switch level {
	case LevelError:
		return "otakurganizer - Error", "otakurganizer,error", "high"
	case LevelWarning:
		return "otakurganizer - Warning", "otakurganizer,warning", ""
	default:
		return "otakurganizer - Done", "otakurganizer,success", ""
	}
}
