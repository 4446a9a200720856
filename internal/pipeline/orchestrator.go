package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avdeev/matchpulse/internal/pkg/diagnostics"
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// State is the orchestrator's position in the cycle state machine.
type State int

const (
	StateFetching State = iota
	StateMerging
	StateSummarizing
	StateAlerting
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateSummarizing:
		return "summarizing"
	case StateAlerting:
		return "alerting"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AbortError is the fatal cycle error: the raw cache document is missing or
// structurally invalid. It always surfaces to the process boundary.
type AbortError struct {
	Stage string
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("pipeline aborted during %s: %v", e.Stage, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// Source produces the raw cycle document. Implemented by the fetch
// collaborators; the orchestrator performs no network or file I/O itself.
type Source interface {
	Fetch(ctx context.Context) (*models.RawCycleDocument, error)
}

// Summarizer writes human-readable per-match summaries for the cycle.
type Summarizer interface {
	WriteSummaries(records []models.MergedMatchRecord) error
}

// AlertRunner evaluates the alert registry against the sorted records.
// restrict, when non-nil, limits evaluation to the listed match ids.
type AlertRunner interface {
	Run(ctx context.Context, records []models.MergedMatchRecord, restrict map[string]struct{}) error
}

// Orchestrator sequences one full cycle: fetch → unpack → merge+stamp+sort →
// summarize → alert. It runs exactly one cycle per invocation; re-invocation
// cadence belongs to the external scheduler.
type Orchestrator struct {
	source     Source
	merge      MergeFunc
	summarizer Summarizer
	alerter    AlertRunner
	logger     *slog.Logger
	loc        *time.Location

	state   State
	timings *Timings
}

// NewOrchestrator wires the cycle stages together. Creation timestamps are
// stamped in Eastern time, matching the upstream consumers of created_at.
func NewOrchestrator(source Source, merge MergeFunc, summarizer Summarizer, alerter AlertRunner, logger *slog.Logger) *Orchestrator {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		logger.Warn("Could not load Eastern timezone, falling back to local", "error", err)
		loc = time.Local
	}
	return &Orchestrator{
		source:     source,
		merge:      merge,
		summarizer: summarizer,
		alerter:    alerter,
		logger:     logger,
		loc:        loc,
		state:      StateFetching,
	}
}

// State returns the orchestrator's current cycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Timings returns the stage timings recorded by the most recent cycle.
func (o *Orchestrator) Timings() *Timings {
	return o.timings
}

// RunCycle executes one full cycle. A missing or structurally invalid raw
// document aborts the cycle with an AbortError before any downstream output
// is attempted; evaluator failures inside the alert stage never prevent the
// cycle from completing.
func (o *Orchestrator) RunCycle(ctx context.Context, restrict map[string]struct{}) error {
	logger := o.logger.With("cycle_id", uuid.NewString())
	o.timings = &Timings{}
	cycleStart := time.Now()

	diagnostics.Log(logger, "pre_cycle", diagnostics.Collect(logger))

	// Fetching
	o.state = StateFetching
	var doc *models.RawCycleDocument
	err := o.timings.timeStage(logger, "fetch", func() error {
		var fetchErr error
		doc, fetchErr = o.source.Fetch(ctx)
		return fetchErr
	})
	if err != nil {
		return o.abort(logger, "fetch", err)
	}

	// Merging
	o.state = StateMerging
	if doc == nil || doc.Matches == nil {
		return o.abort(logger, "merge", fmt.Errorf("raw cycle document has no matches collection"))
	}

	var records []models.MergedMatchRecord
	_ = o.timings.timeStage(logger, "merge", func() error {
		caches := Unpack(doc)
		records = o.merge(caches)

		createdAt := time.Now().In(o.loc).Format("01/02/2006 03:04:05 PM MST")
		for i := range records {
			records[i].CreatedAt = createdAt
		}

		records = SortByStatus(records)
		logger.Debug("Merged records", "count", len(records))
		return nil
	})

	// Summarizing. Summary failures are logged and never abort the cycle.
	o.state = StateSummarizing
	_ = o.timings.timeStage(logger, "summarize", func() error {
		if err := o.summarizer.WriteSummaries(records); err != nil {
			logger.Error("Error writing match summaries", "error", err)
		}
		return nil
	})

	// Alerting. Pair-level failures are recovered inside the engine; an error
	// here means the engine itself could not run.
	o.state = StateAlerting
	err = o.timings.timeStage(logger, "alerts", func() error {
		return o.alerter.Run(ctx, records, restrict)
	})
	if err != nil {
		return fmt.Errorf("alert stage failed: %w", err)
	}

	o.state = StateCompleted
	logger.Info("Pipeline completed", "elapsed", time.Since(cycleStart), "matches", len(records))
	diagnostics.Log(logger, "post_cycle", diagnostics.Collect(logger))
	return nil
}

func (o *Orchestrator) abort(logger *slog.Logger, stage string, err error) error {
	o.state = StateAborted
	abortErr := &AbortError{Stage: stage, Err: err}
	logger.Error("Pipeline aborted", "stage", stage, "error", err)
	return abortErr
}
