package pipeline

import (
	"log/slog"
	"time"
)

// Timings collects per-stage wall-clock durations for one cycle. It is
// cycle-local and built fresh by the orchestrator on every run.
type Timings struct {
	stages []StageTiming
}

// StageTiming is one recorded stage duration.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Record appends one stage duration.
func (t *Timings) Record(stage string, d time.Duration) {
	t.stages = append(t.stages, StageTiming{Stage: stage, Duration: d})
}

// Stages returns recorded timings in stage execution order.
func (t *Timings) Stages() []StageTiming {
	out := make([]StageTiming, len(t.stages))
	copy(out, t.stages)
	return out
}

// Total returns the sum of all recorded stage durations.
func (t *Timings) Total() time.Duration {
	var total time.Duration
	for _, s := range t.stages {
		total += s.Duration
	}
	return total
}

// timeStage runs fn, records its duration under name, and logs the elapsed
// time the way every stage of the cycle is reported.
func (t *Timings) timeStage(logger *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	t.Record(name, elapsed)
	logger.Info("Stage finished", "stage", name, "elapsed", elapsed)
	return err
}
