// validate-cache loads a raw cycle cache file, unpacks it, and reports cache
// sizes and structural problems. Handy for checking what the orchestrator
// would see before wiring up a cron cadence.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/avdeev/matchpulse/internal/pipeline"
	"github.com/avdeev/matchpulse/internal/pkg/models"
)

func main() {
	path := flag.String("cache", "full_match_cache.json", "Path to the raw cycle cache file")
	flag.Parse()

	if err := validate(*path); err != nil {
		fmt.Fprintf(os.Stderr, "validate-cache: %v\n", err)
		os.Exit(1)
	}
}

func validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	var doc models.RawCycleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if doc.Matches == nil {
		return fmt.Errorf("%s has no matches collection", path)
	}

	caches := pipeline.Unpack(&doc)

	fmt.Printf("matches:       %d\n", len(caches.Live))
	fmt.Printf("details:       %d\n", len(caches.Details))
	fmt.Printf("odds:          %d\n", len(caches.Odds))
	fmt.Printf("teams:         %d\n", len(caches.Teams))
	fmt.Printf("competitions:  %d\n", len(caches.Competitions))
	fmt.Printf("countries:     %d\n", len(caches.Countries))

	problems := 0
	seen := make(map[string]int)
	for _, m := range doc.Matches {
		if m.MatchID == "" {
			fmt.Println("problem: match entry without match_id")
			problems++
			continue
		}
		seen[m.MatchID]++
		if m.BasicInfo.StatusID == "" {
			fmt.Printf("problem: match %s has no status_id\n", m.MatchID)
			problems++
		}
	}
	for id, n := range seen {
		if n > 1 {
			fmt.Printf("problem: match id %s appears %d times\n", id, n)
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d structural problem(s) found", problems)
	}
	fmt.Println("cache OK")
	return nil
}
