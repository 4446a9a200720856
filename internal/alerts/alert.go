// Package alerts holds the alert evaluator registry and the engine that runs
// every registered evaluator against every candidate match with persisted
// at-most-once deduplication per (alert, match) pair.
package alerts

import (
	"log/slog"

	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// Notice is the payload an evaluator returns when a match meets its criteria.
type Notice struct {
	Type      string
	Line      float64
	Value     float64
	Threshold float64
	Timestamp int64
	Detail    string
}

// Evaluator is the alert capability: a named predicate over one merged match
// record. Check returns nil when the alert does not trigger. Implementations
// may return errors freely; the engine isolates failures per (alert, match)
// pair and also recovers panics, so a broken evaluator can never take down
// the pass.
type Evaluator interface {
	Name() string
	Check(record *models.MergedMatchRecord) (*Notice, error)
	Logger() *slog.Logger
}
