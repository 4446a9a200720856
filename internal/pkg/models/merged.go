package models

// MergedMatchRecord is one enriched per-match record produced by the merge
// stage. The orchestrator stamps CreatedAt immediately after merge returns;
// the record is immutable for the rest of the cycle.
type MergedMatchRecord struct {
	MatchID     string         `json:"match_id"`
	StatusID    string         `json:"status_id"`
	CreatedAt   string         `json:"created_at"`
	HomeTeam    string         `json:"home_team"`
	AwayTeam    string         `json:"away_team"`
	HomeScore   int            `json:"home_score"`
	AwayScore   int            `json:"away_score"`
	MatchTime   string         `json:"match_time"`
	Competition string         `json:"competition"`
	Country     string         `json:"country"`
	Details     map[string]any `json:"details"`
	Odds        OddsBlock      `json:"odds"`
}

// StatusDescription maps a lifecycle status id to its human-readable name.
// Unrecognized ids come back as "Unknown".
func StatusDescription(statusID string) string {
	switch statusID {
	case "1":
		return "Not Started"
	case "2":
		return "First Half"
	case "3":
		return "Halftime"
	case "4":
		return "Second Half"
	case "5":
		return "Overtime"
	case "6":
		return "Overtime (deprecated)"
	case "7":
		return "Penalty Shootout"
	case "8":
		return "Finished"
	case "9":
		return "Delayed"
	case "10":
		return "Interrupted"
	case "11":
		return "Cut in Half"
	case "12":
		return "Cancelled"
	case "13":
		return "To Be Determined"
	case "14":
		return "Postponed"
	default:
		return "Unknown"
	}
}
