// Package summary formats human-readable per-match summaries and writes them
// to a dedicated log sink, one block per match.
package summary

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// Writer renders summaries for a cycle's merged records.
type Writer struct {
	logger *slog.Logger
}

func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteSummaries formats every record and writes them as one batch. Records
// are emitted in reverse order so the most significant statuses end up at the
// bottom of the log, nearest the tail.
func (w *Writer) WriteSummaries(records []models.MergedMatchRecord) error {
	if len(records) == 0 {
		w.logger.Info("No matches to summarize")
		return nil
	}

	blocks := make([]string, 0, len(records))
	total := len(records)
	for i := total - 1; i >= 0; i-- {
		idx := total - i
		blocks = append(blocks, FormatMatchSummary(&records[i], idx, total))
	}

	w.logger.Info("\n\n" + strings.Join(blocks, "\n\n") + "\n")
	return nil
}

// FormatMatchSummary renders one match block with its position in the batch.
func FormatMatchSummary(record *models.MergedMatchRecord, idx, total int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Match %d/%d ===\n", idx, total))
	home := record.HomeTeam
	if home == "" {
		home = "Unknown"
	}
	away := record.AwayTeam
	if away == "" {
		away = "Unknown"
	}
	b.WriteString(fmt.Sprintf("%s vs %s\n", home, away))
	b.WriteString(fmt.Sprintf("Status: %s (%s)\n", models.StatusDescription(record.StatusID), record.StatusID))
	b.WriteString(fmt.Sprintf("Score: %d-%d", record.HomeScore, record.AwayScore))
	if record.MatchTime != "" {
		b.WriteString(fmt.Sprintf(" | Time: %s", record.MatchTime))
	}
	b.WriteString("\n")
	if record.Competition != "" {
		comp := record.Competition
		if record.Country != "" {
			comp += " (" + record.Country + ")"
		}
		b.WriteString(fmt.Sprintf("Competition: %s\n", comp))
	}
	if line, ok := latestLine(record.Odds); ok {
		b.WriteString(fmt.Sprintf("O/U line: %.2f\n", line))
	}
	b.WriteString(fmt.Sprintf("Created: %s | Match ID: %s", record.CreatedAt, record.MatchID))
	return b.String()
}

func latestLine(odds models.OddsBlock) (float64, bool) {
	var latest models.OverUnderEntry
	found := false
	for _, entry := range odds.OverUnder {
		if !found || entry.Timestamp > latest.Timestamp {
			latest = entry
			found = true
		}
	}
	return latest.Line, found
}
