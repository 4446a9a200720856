package alerts

import (
	"log/slog"

	"github.com/avdeev/matchpulse/internal/pkg/config"
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// DefaultOverUnderThreshold applies when no threshold is configured for the
// over_under alert.
const DefaultOverUnderThreshold = 3.0

func init() {
	Register("over_under", func(params config.AlertParams, logger *slog.Logger) Evaluator {
		threshold := params.Threshold
		if threshold <= 0 {
			threshold = DefaultOverUnderThreshold
		}
		return &OverUnderAlert{threshold: threshold, logger: logger}
	})
}

// OverUnderAlert triggers when the most recent over/under line is above the
// threshold and the match is in first half, halftime or second half.
type OverUnderAlert struct {
	threshold float64
	logger    *slog.Logger
}

func (a *OverUnderAlert) Name() string {
	return "over_under"
}

func (a *OverUnderAlert) Logger() *slog.Logger {
	return a.logger
}

func (a *OverUnderAlert) Threshold() float64 {
	return a.threshold
}

func (a *OverUnderAlert) Check(record *models.MergedMatchRecord) (*Notice, error) {
	switch record.StatusID {
	case "2", "3", "4":
	default:
		a.logger.Debug("Status not eligible", "match_id", record.MatchID, "status_id", record.StatusID)
		return nil, nil
	}

	ouMap := record.Odds.OverUnder
	if len(ouMap) == 0 {
		a.logger.Debug("No over/under data", "match_id", record.MatchID)
		return nil, nil
	}

	// Most recent quote wins.
	var latest models.OverUnderEntry
	found := false
	for _, entry := range ouMap {
		if !found || entry.Timestamp > latest.Timestamp {
			latest = entry
			found = true
		}
	}

	if latest.Line <= a.threshold {
		a.logger.Debug("Line below threshold",
			"match_id", record.MatchID, "line", latest.Line, "threshold", a.threshold)
		return nil, nil
	}

	a.logger.Info("Line exceeds threshold",
		"match_id", record.MatchID, "line", latest.Line, "threshold", a.threshold)

	return &Notice{
		Type:      a.Name(),
		Line:      latest.Line,
		Value:     latest.Over,
		Threshold: a.threshold,
		Timestamp: latest.Timestamp,
		Detail:    formatLineDetail(latest.Line),
	}, nil
}
