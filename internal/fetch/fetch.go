// Package fetch provides the raw cycle document sources consumed by the
// orchestrator. The core pipeline performs no I/O of its own; these
// collaborators own the upstream read, including retry/backoff for the HTTP
// source.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// Source produces one raw cycle document per cycle.
type Source interface {
	Fetch(ctx context.Context) (*models.RawCycleDocument, error)
}

// FileSource reads the raw cycle document from the on-disk cache file.
type FileSource struct {
	path   string
	logger *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Fetch reads and decodes the cache file. A missing file or invalid JSON is
// a fetch failure; the orchestrator maps it to a cycle abort.
func (s *FileSource) Fetch(_ context.Context) (*models.RawCycleDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("missing cache file %s: %w", s.path, err)
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", s.path, err)
	}

	var doc models.RawCycleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", s.path, err)
	}

	s.logger.Debug("Loaded raw cycle document", "path", s.path, "matches", len(doc.Matches))
	return &doc, nil
}
