package pipeline

import (
	"sort"

	"github.com/avdeev/matchpulse/internal/pkg/models"
)

// statusOrder is the canonical lifecycle sequence for match status ids.
// Records with a status outside this set sort after every recognized record,
// as one equivalence class.
var statusOrder = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14"}

var statusRank = func() map[string]int {
	m := make(map[string]int, len(statusOrder))
	for i, s := range statusOrder {
		m[s] = i
	}
	return m
}()

// SortByStatus orders merged records by lifecycle status. The sort is stable:
// records with equal rank (same recognized status, or both unrecognized) keep
// their relative input order. The input slice is sorted in place and returned.
func SortByStatus(records []models.MergedMatchRecord) []models.MergedMatchRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return statusRankOf(records[i].StatusID) < statusRankOf(records[j].StatusID)
	})
	return records
}

func statusRankOf(statusID string) int {
	if rank, ok := statusRank[statusID]; ok {
		return rank
	}
	return len(statusOrder)
}
