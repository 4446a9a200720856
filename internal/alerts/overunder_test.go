package alerts

import (
	"io"
	"log/slog"
	"testing"

	"github.com/avdeev/matchpulse/internal/pkg/config"
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

func newOverUnder(threshold float64) *OverUnderAlert {
	return &OverUnderAlert{
		threshold: threshold,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func ouRecord(statusID string, entries map[string]models.OverUnderEntry) *models.MergedMatchRecord {
	return &models.MergedMatchRecord{
		MatchID:  "42",
		StatusID: statusID,
		Odds:     models.OddsBlock{OverUnder: entries},
	}
}

func TestOverUnderAlert_Check(t *testing.T) {
	tests := []struct {
		name      string
		statusID  string
		entries   map[string]models.OverUnderEntry
		threshold float64
		wantFire  bool
		wantLine  float64
	}{
		{
			name:     "line above threshold in first half",
			statusID: "2",
			entries: map[string]models.OverUnderEntry{
				"q1": {Timestamp: 100, Line: 3.5, Over: 1.85},
			},
			threshold: 3.0,
			wantFire:  true,
			wantLine:  3.5,
		},
		{
			name:     "line equal to threshold does not fire",
			statusID: "2",
			entries: map[string]models.OverUnderEntry{
				"q1": {Timestamp: 100, Line: 3.0},
			},
			threshold: 3.0,
			wantFire:  false,
		},
		{
			name:     "not started status does not fire",
			statusID: "1",
			entries: map[string]models.OverUnderEntry{
				"q1": {Timestamp: 100, Line: 4.5},
			},
			threshold: 3.0,
			wantFire:  false,
		},
		{
			name:     "finished status does not fire",
			statusID: "8",
			entries: map[string]models.OverUnderEntry{
				"q1": {Timestamp: 100, Line: 4.5},
			},
			threshold: 3.0,
			wantFire:  false,
		},
		{
			name:      "no odds data",
			statusID:  "3",
			entries:   nil,
			threshold: 3.0,
			wantFire:  false,
		},
		{
			name:     "most recent entry wins",
			statusID: "4",
			entries: map[string]models.OverUnderEntry{
				"old": {Timestamp: 100, Line: 4.5},
				"new": {Timestamp: 200, Line: 2.5},
			},
			threshold: 3.0,
			wantFire:  false,
		},
		{
			name:     "most recent entry wins the other way",
			statusID: "4",
			entries: map[string]models.OverUnderEntry{
				"old": {Timestamp: 100, Line: 2.5},
				"new": {Timestamp: 200, Line: 4.5},
			},
			threshold: 3.0,
			wantFire:  true,
			wantLine:  4.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := newOverUnder(tt.threshold)
			notice, err := alert.Check(ouRecord(tt.statusID, tt.entries))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (notice != nil) != tt.wantFire {
				t.Fatalf("fired = %v, want %v", notice != nil, tt.wantFire)
			}
			if notice != nil && notice.Line != tt.wantLine {
				t.Errorf("notice line = %v, want %v", notice.Line, tt.wantLine)
			}
		})
	}
}

func TestOverUnderAlert_DefaultThreshold(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	evaluators, err := Build(&config.AlertsConfig{}, func(string) (*slog.Logger, error) {
		return logger, nil
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var found bool
	for _, ev := range evaluators {
		if ev.Name() != "over_under" {
			continue
		}
		found = true
		ou, ok := ev.(*OverUnderAlert)
		if !ok {
			t.Fatalf("over_under evaluator has unexpected type %T", ev)
		}
		if ou.Threshold() != DefaultOverUnderThreshold {
			t.Errorf("threshold = %v, want default %v", ou.Threshold(), DefaultOverUnderThreshold)
		}
	}
	if !found {
		t.Fatal("over_under alert not registered")
	}
}

func TestBuild_ConfiguredThresholdWins(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.AlertsConfig{
		Params: map[string]config.AlertParams{
			"over_under": {Threshold: 4.5},
		},
	}

	evaluators, err := Build(cfg, func(string) (*slog.Logger, error) {
		return logger, nil
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, ev := range evaluators {
		if ou, ok := ev.(*OverUnderAlert); ok {
			if ou.Threshold() != 4.5 {
				t.Errorf("threshold = %v, want 4.5", ou.Threshold())
			}
			return
		}
	}
	t.Fatal("over_under alert not built")
}
