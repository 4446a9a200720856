package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/avdeev/matchpulse/internal/pkg/config"
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// HTTPSource fetches the raw cycle document from the upstream JSON endpoint
// with bounded retry and doubling backoff. When write_through is set, the
// fetched document is also written to the cache file so file mode and tooling
// see the same data.
type HTTPSource struct {
	client    *http.Client
	url       string
	retries   int
	backoff   time.Duration
	cacheFile string
	logger    *slog.Logger
}

func NewHTTPSource(cfg *config.FetchConfig, logger *slog.Logger) *HTTPSource {
	src := &HTTPSource{
		client:  &http.Client{Timeout: cfg.Timeout},
		url:     cfg.URL,
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
		logger:  logger,
	}
	if cfg.WriteThrough {
		src.cacheFile = cfg.CacheFile
	}
	return src
}

func (s *HTTPSource) Fetch(ctx context.Context) (*models.RawCycleDocument, error) {
	var lastErr error
	backoff := s.backoff

	for attempt := 1; attempt <= s.retries; attempt++ {
		body, err := s.fetchOnce(ctx)
		if err == nil {
			return s.decode(body)
		}
		lastErr = err
		s.logger.Warn("Fetch attempt failed",
			"attempt", attempt, "max_attempts", s.retries, "error", err)

		if attempt == s.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", s.retries, lastErr)
}

func (s *HTTPSource) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

func (s *HTTPSource) decode(body []byte) (*models.RawCycleDocument, error) {
	var doc models.RawCycleDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON from upstream: %w", err)
	}

	if s.cacheFile != "" {
		if err := os.WriteFile(s.cacheFile, body, 0o644); err != nil {
			// Cache write-through is best effort.
			s.logger.Warn("Could not write cache file", "path", s.cacheFile, "error", err)
		}
	}

	s.logger.Debug("Fetched raw cycle document", "url", s.url, "matches", len(doc.Matches))
	return &doc, nil
}
