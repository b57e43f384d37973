package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"otakurganizer/internal/config"
	"otakurganizer/internal/embedding"
	"otakurganizer/internal/services"
	"otakurganizer/internal/services/jikan"
	"otakurganizer/internal/services/llm"
)

const (
	llmCheckTimeout      = 30 * time.Second
	metadataCheckTimeout = 10 * time.Second
	embedCheckTimeout    = 15 * time.Second

	// metadataSampleTitle is a long-running series every catalog mirror knows.
	metadataSampleTitle = "Cowboy Bebop"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTargetRoot verifies the organize target. A missing root passes when
// its nearest existing ancestor is writable, since sync creates it.
func CheckTargetRoot(path string) Result {
	const name = "Target root"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured (pass a target to sync)"}
	}
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	} else if !os.IsNotExist(err) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	ancestor := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckCatalogLock reports whether another process currently holds the
// catalog writer lock.
func CheckCatalogLock(lockPath string) Result {
	const name = "Catalog lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", lockPath, err)}
	}
	if !locked {
		return Result{Name: name, Passed: true, Detail: "held by another otakurganizer process"}
	}
	_ = lock.Unlock()
	return Result{Name: name, Passed: true, Detail: "idle"}
}

// CheckVectorizer embeds a short sample text with the configured backend.
func CheckVectorizer(ctx context.Context, vectorizer embedding.Vectorizer) Result {
	name := "Embedding backend"
	if vectorizer == nil {
		return Result{Name: name, Detail: "not configured"}
	}
	name = fmt.Sprintf("Embedding backend (%s)", vectorizer.Name())

	checkCtx, cancel := context.WithTimeout(ctx, embedCheckTimeout)
	defer cancel()
	vec, err := vectorizer.Generate(checkCtx, "preflight")
	if err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d dimensions", len(vec))}
}

// CheckAI verifies that the suggestion API is reachable and the key is
// valid. It uses a single attempt and no rate limit.
func CheckAI(ctx context.Context, cfg *config.Config) Result {
	const name = "AI suggestions"
	if !cfg.AI.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Referer: cfg.AI.Referer,
		Title:   cfg.AI.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckMetadata verifies that the online metadata API answers a search.
// An empty result still proves the API is reachable.
func CheckMetadata(ctx context.Context, cfg *config.Config, opts ...jikan.Option) Result {
	const name = "Online metadata"
	if !cfg.Metadata.OnlineEnabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	_, err := jikan.NewClient(cfg.Metadata, opts...).Search(checkCtx, metadataSampleTitle)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return Result{Name: name, Detail: summarizeNetworkError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeNetworkError produces a human-readable summary for failed checks.
func summarizeNetworkError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
