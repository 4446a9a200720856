package pipeline

import (
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// Unpack decomposes one raw cycle document into independent lookup caches.
// It is a pure transformation: absent details or odds for a match yield an
// empty mapping for that id, team and competition entries without an id are
// skipped, and a country is recorded only when both the competition's
// country_id and the entry's country_name are present. Repeated reference ids
// overwrite idempotently, last write wins.
func Unpack(doc *models.RawCycleDocument) models.CycleCaches {
	caches := models.CycleCaches{
		Live:         make([]models.BasicInfo, 0, len(doc.Matches)),
		Details:      make(map[string]map[string]any),
		Odds:         make(map[string]models.OddsBlock),
		Teams:        make(map[string]models.Team),
		Competitions: make(map[string]models.Competition),
		Countries:    make(map[string]string),
	}

	for _, m := range doc.Matches {
		basic := m.BasicInfo
		if basic.MatchID == "" {
			basic.MatchID = m.MatchID
		}
		caches.Live = append(caches.Live, basic)

		details := m.Details
		if details == nil {
			details = map[string]any{}
		}
		caches.Details[m.MatchID] = details

		odds := m.Odds
		if odds.OverUnder == nil {
			odds.OverUnder = map[string]models.OverUnderEntry{}
		}
		caches.Odds[m.MatchID] = odds

		for _, team := range []models.Team{m.Enriched.HomeTeam, m.Enriched.AwayTeam} {
			if team.ID != "" {
				caches.Teams[team.ID] = team
			}
		}

		comp := m.Enriched.Competition
		if comp.ID != "" {
			caches.Competitions[comp.ID] = comp
		}

		if comp.CountryID != "" && m.Metadata.CountryName != "" {
			caches.Countries[comp.CountryID] = m.Metadata.CountryName
		}
	}

	return caches
}
