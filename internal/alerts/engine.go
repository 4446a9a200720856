package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avdeev/matchpulse/internal/pkg/models"
	"github.com/avdeev/matchpulse/internal/pkg/storage"
)

// Notifier dispatches a formatted alert message. Delivery semantics are the
// channel's responsibility.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Engine runs every evaluator against every candidate record, exactly once
// per (alert, match) pair over the lifetime of the persisted seen sets.
type Engine struct {
	evaluators []Evaluator
	store      storage.SeenStore
	notifier   Notifier
	logger     *slog.Logger

	// seen holds the in-memory view of the persisted sets, keyed by alert
	// name, loaded once at construction.
	seen map[string]map[string]struct{}
}

// NewEngine loads the persisted seen set for every evaluator. Evaluation
// order follows the order of evaluators.
func NewEngine(ctx context.Context, evaluators []Evaluator, store storage.SeenStore, notifier Notifier, logger *slog.Logger) (*Engine, error) {
	seen := make(map[string]map[string]struct{}, len(evaluators))
	for _, ev := range evaluators {
		set, err := store.Load(ctx, ev.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to load seen set for alert %s: %w", ev.Name(), err)
		}
		seen[ev.Name()] = set
	}

	return &Engine{
		evaluators: evaluators,
		store:      store,
		notifier:   notifier,
		logger:     logger,
		seen:       seen,
	}, nil
}

// Run processes the records through all evaluators. When restrict is non-nil,
// only matches whose id is in the set are considered. The double loop is
// fully sequential, record order times evaluator registration order; the seen
// set is persisted after each new pair, and the durable mark always follows
// the dispatch.
func (e *Engine) Run(ctx context.Context, records []models.MergedMatchRecord, restrict map[string]struct{}) error {
	candidates := 0
	for i := range records {
		record := &records[i]
		matchID := record.MatchID
		if matchID == "" {
			continue
		}
		if restrict != nil {
			if _, ok := restrict[matchID]; !ok {
				continue
			}
		}
		candidates++

		for _, ev := range e.evaluators {
			// Dedup precedes evaluation: a seen pair is never re-checked,
			// even if the underlying condition has changed since.
			if _, done := e.seen[ev.Name()][matchID]; done {
				continue
			}

			notice := e.safeCheck(ev, record)
			if notice == nil {
				continue
			}
			e.process(ctx, ev, record, notice)
		}
	}

	e.logger.Info("Alert pass finished",
		"matches", candidates, "alerts", len(e.evaluators))
	return nil
}

// safeCheck runs one evaluation with pair-level isolation: errors and panics
// are logged against the (alert, match) pair and swallowed.
func (e *Engine) safeCheck(ev Evaluator, record *models.MergedMatchRecord) (notice *Notice) {
	defer func() {
		if r := recover(); r != nil {
			ev.Logger().Error("Panic in alert check",
				"alert", ev.Name(), "match_id", record.MatchID, "panic", r)
			notice = nil
		}
	}()

	notice, err := ev.Check(record)
	if err != nil {
		ev.Logger().Error("Error in alert check",
			"alert", ev.Name(), "match_id", record.MatchID, "error", err)
		return nil
	}
	return notice
}

// process handles one triggered pair: format, log to the alert's sink,
// dispatch, mark seen, persist. Failures here are pair-level too.
func (e *Engine) process(ctx context.Context, ev Evaluator, record *models.MergedMatchRecord, notice *Notice) {
	message := FormatAlert(record, notice, ev.Name())

	e.logger.Debug("Alert triggered", "alert", ev.Name(), "match_id", record.MatchID)
	ev.Logger().Info(message)

	if err := e.notifier.Send(ctx, message); err != nil {
		e.logger.Error("Error dispatching alert notification",
			"alert", ev.Name(), "match_id", record.MatchID, "error", err)
		return
	}

	e.seen[ev.Name()][record.MatchID] = struct{}{}
	if err := e.store.Add(ctx, ev.Name(), record.MatchID); err != nil {
		// In-memory mark stays; the durable mark is what anchors
		// at-most-once across restarts.
		e.logger.Error("Error persisting seen pair",
			"alert", ev.Name(), "match_id", record.MatchID, "error", err)
	}
}

// FormatAlert renders the notification message for one triggered pair.
func FormatAlert(record *models.MergedMatchRecord, notice *Notice, alertName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🚨 %s alert\n", alertName))
	title := matchTitle(record)
	b.WriteString(title + "\n")
	b.WriteString(fmt.Sprintf("Status: %s | Score: %d-%d\n",
		models.StatusDescription(record.StatusID), record.HomeScore, record.AwayScore))
	if record.Competition != "" {
		comp := record.Competition
		if record.Country != "" {
			comp += " (" + record.Country + ")"
		}
		b.WriteString(fmt.Sprintf("Competition: %s\n", comp))
	}
	if notice.Detail != "" {
		b.WriteString(notice.Detail + "\n")
	}
	b.WriteString(fmt.Sprintf("Match ID: %s", record.MatchID))
	return b.String()
}

func matchTitle(record *models.MergedMatchRecord) string {
	home := record.HomeTeam
	if home == "" {
		home = "Unknown"
	}
	away := record.AwayTeam
	if away == "" {
		away = "Unknown"
	}
	return home + " vs " + away
}

func formatLineDetail(line float64) string {
	return fmt.Sprintf("Over/Under Line: %.2f", line)
}
