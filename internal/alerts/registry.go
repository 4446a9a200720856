package alerts

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/avdeev/matchpulse/internal/pkg/config"
)

// Factory builds one evaluator from its configured parameters and its
// dedicated log sink.
type Factory func(params config.AlertParams, logger *slog.Logger) Evaluator

type registration struct {
	name    string
	factory Factory
}

var (
	registryMu sync.RWMutex
	registry   []registration
)

// Register adds an evaluator factory under a name. Registration order is
// evaluation order within the engine. Called from package init or startup
// wiring; duplicate names panic.
func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("alerts: empty name in Register")
	}
	if f == nil {
		panic("alerts: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	for _, r := range registry {
		if r.name == n {
			panic("alerts: duplicate registration for " + n)
		}
	}
	registry = append(registry, registration{name: n, factory: f})
}

// AvailableNames lists registered alert names, sorted.
func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.name)
	}
	sort.Strings(out)
	return out
}

// LoggerFunc creates the dedicated log sink for one alert name.
type LoggerFunc func(name string) (*slog.Logger, error)

// Build instantiates every registered evaluator in registration order. An
// alert with no entry in cfg.Params runs with its factory defaults (the
// factory receives the zero AlertParams and substitutes documented defaults).
func Build(cfg *config.AlertsConfig, newLogger LoggerFunc) ([]Evaluator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	evaluators := make([]Evaluator, 0, len(registry))
	for _, r := range registry {
		logger, err := newLogger(r.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for alert %s: %w", r.name, err)
		}
		params := config.AlertParams{}
		if cfg != nil {
			if p, ok := cfg.Params[r.name]; ok {
				params = p
			}
		}
		evaluators = append(evaluators, r.factory(params, logger))
	}
	return evaluators, nil
}
