package pipeline

import (
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// MergeFunc is the merge/enrichment contract consumed by the orchestrator:
// a pure function from the unpacked caches to enriched per-match records.
// Each returned record must carry at least a match id and a status id; the
// orchestrator attaches the creation timestamp afterwards.
type MergeFunc func(caches models.CycleCaches) []models.MergedMatchRecord

// EnrichMerge is the default merger: a straightforward join of the caches,
// one record per live result, resolving team, competition and country names
// through the reference caches. Missing references leave the corresponding
// fields empty rather than dropping the record.
func EnrichMerge(caches models.CycleCaches) []models.MergedMatchRecord {
	records := make([]models.MergedMatchRecord, 0, len(caches.Live))

	for _, live := range caches.Live {
		rec := models.MergedMatchRecord{
			MatchID:   live.MatchID,
			StatusID:  live.StatusID,
			HomeScore: live.HomeScore,
			AwayScore: live.AwayScore,
			MatchTime: live.MatchTime,
			Details:   caches.Details[live.MatchID],
			Odds:      caches.Odds[live.MatchID],
		}
		if rec.Details == nil {
			rec.Details = map[string]any{}
		}

		if team, ok := caches.Teams[live.HomeTeamID]; ok {
			rec.HomeTeam = team.Name
		}
		if team, ok := caches.Teams[live.AwayTeamID]; ok {
			rec.AwayTeam = team.Name
		}
		if comp, ok := caches.Competitions[live.CompetitionID]; ok {
			rec.Competition = comp.Name
			if name, ok := caches.Countries[comp.CountryID]; ok {
				rec.Country = name
			}
		}

		records = append(records, rec)
	}

	return records
}
