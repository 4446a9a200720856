package models

// RawCycleDocument is the per-cycle input produced by the fetch stage.
// One document describes every live match known for the current cycle.
type RawCycleDocument struct {
	Matches []MatchEntry `json:"matches"`
}

// MatchEntry is one match inside a raw cycle document.
type MatchEntry struct {
	MatchID   string         `json:"match_id"`
	BasicInfo BasicInfo      `json:"basic_info"`
	Details   map[string]any `json:"details"`
	Odds      OddsBlock      `json:"odds"`
	Enriched  Enrichment     `json:"enriched"`
	Metadata  Metadata       `json:"metadata"`
}

// BasicInfo holds the live-state fields of a match, including the reference
// ids the merge stage joins against the team/competition caches.
type BasicInfo struct {
	MatchID       string `json:"match_id"`
	StatusID      string `json:"status_id"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
	MatchTime     string `json:"match_time"`
	KickoffAt     int64  `json:"kickoff_at"`
	HomeTeamID    string `json:"home_team_id"`
	AwayTeamID    string `json:"away_team_id"`
	CompetitionID string `json:"competition_id"`
}

// OddsBlock groups the odds markets attached to a match entry.
type OddsBlock struct {
	OverUnder map[string]OverUnderEntry `json:"over_under"`
}

// OverUnderEntry is one recorded over/under quote. Timestamp is when the
// bookmaker published the quote; the most recent entry is the current line.
type OverUnderEntry struct {
	Timestamp int64   `json:"timestamp"`
	Line      float64 `json:"line"`
	Over      float64 `json:"over"`
	Under     float64 `json:"under"`
}

// Enrichment carries the reference records embedded in a match entry.
type Enrichment struct {
	HomeTeam    Team        `json:"home_team"`
	AwayTeam    Team        `json:"away_team"`
	Competition Competition `json:"competition"`
}

// Team is a team reference record.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// Competition is a competition reference record.
type Competition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CountryID string `json:"country_id"`
}

// Metadata carries cycle-level fields attached to a match entry.
type Metadata struct {
	CountryName string `json:"country_name"`
}

// CycleCaches is the output of unpacking one raw cycle document: independent
// lookup caches consumed by the merge stage. All maps are keyed by the ids
// found in the document; absent optional blocks yield empty maps, never nil
// lookups that differ from present-but-empty ones.
type CycleCaches struct {
	Live         []BasicInfo
	Details      map[string]map[string]any
	Odds         map[string]OddsBlock
	Teams        map[string]Team
	Competitions map[string]Competition
	Countries    map[string]string
}
