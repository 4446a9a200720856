package alerts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/avdeev/matchpulse/internal/pkg/models"
)

type memorySeenStore struct {
	sets    map[string]map[string]struct{}
	addErr  error
	loadErr error
	adds    [][2]string // (alert, match) in persistence order
}

func newMemorySeenStore() *memorySeenStore {
	return &memorySeenStore{sets: make(map[string]map[string]struct{})}
}

func (s *memorySeenStore) seed(alert string, matchIDs ...string) {
	set, ok := s.sets[alert]
	if !ok {
		set = make(map[string]struct{})
		s.sets[alert] = set
	}
	for _, id := range matchIDs {
		set[id] = struct{}{}
	}
}

func (s *memorySeenStore) Load(_ context.Context, alertName string) (map[string]struct{}, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]struct{})
	for id := range s.sets[alertName] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *memorySeenStore) Add(_ context.Context, alertName, matchID string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.seed(alertName, matchID)
	s.adds = append(s.adds, [2]string{alertName, matchID})
	return nil
}

func (s *memorySeenStore) Close() error { return nil }

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Send(_ context.Context, message string) error {
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, message)
	return nil
}

// scriptedEvaluator triggers for the match ids in fire, errors for those in
// fail, and panics for those in explode. It counts Check invocations per id.
type scriptedEvaluator struct {
	name    string
	fire    map[string]bool
	fail    map[string]bool
	explode map[string]bool
	checked map[string]int
	logger  *slog.Logger
}

func newScriptedEvaluator(name string) *scriptedEvaluator {
	return &scriptedEvaluator{
		name:    name,
		fire:    map[string]bool{},
		fail:    map[string]bool{},
		explode: map[string]bool{},
		checked: map[string]int{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *scriptedEvaluator) Name() string         { return e.name }
func (e *scriptedEvaluator) Logger() *slog.Logger { return e.logger }

func (e *scriptedEvaluator) Check(record *models.MergedMatchRecord) (*Notice, error) {
	e.checked[record.MatchID]++
	if e.explode[record.MatchID] {
		panic("evaluator blew up")
	}
	if e.fail[record.MatchID] {
		return nil, errors.New("evaluator failed")
	}
	if e.fire[record.MatchID] {
		return &Notice{Type: e.name, Detail: "triggered"}, nil
	}
	return nil, nil
}

func matchRecords(ids ...string) []models.MergedMatchRecord {
	out := make([]models.MergedMatchRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.MergedMatchRecord{MatchID: id, StatusID: "2"})
	}
	return out
}

func newTestEngine(t *testing.T, store *memorySeenStore, notifier *recordingNotifier, evs ...Evaluator) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), evs, store, notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestEngine_SeenPairSkipsEvaluationEntirely(t *testing.T) {
	store := newMemorySeenStore()
	store.seed("a", "M1")
	notifier := &recordingNotifier{}
	ev := newScriptedEvaluator("a")
	ev.fire["M1"] = true

	engine := newTestEngine(t, store, notifier, ev)
	if err := engine.Run(context.Background(), matchRecords("M1"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ev.checked["M1"] != 0 {
		t.Errorf("Check must not be invoked for a seen pair, invoked %d times", ev.checked["M1"])
	}
	if len(notifier.messages) != 0 {
		t.Errorf("no notification expected for a seen pair, got %d", len(notifier.messages))
	}
}

func TestEngine_TriggerNotifiesOnceAndPersists(t *testing.T) {
	store := newMemorySeenStore()
	notifier := &recordingNotifier{}
	ev := newScriptedEvaluator("over_under")
	ev.fire["42"] = true

	engine := newTestEngine(t, store, notifier, ev)
	if err := engine.Run(context.Background(), matchRecords("42"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(notifier.messages))
	}
	if _, ok := store.sets["over_under"]["42"]; !ok {
		t.Fatal("match id 42 not persisted to the seen set")
	}

	// Re-run over the same dedup state: zero new notifications.
	engine2 := newTestEngine(t, store, notifier, ev)
	if err := engine2.Run(context.Background(), matchRecords("42"), nil); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("re-run produced %d extra notifications", len(notifier.messages)-1)
	}
}

func TestEngine_FailureIsolationPerPair(t *testing.T) {
	store := newMemorySeenStore()
	notifier := &recordingNotifier{}

	broken := newScriptedEvaluator("broken")
	broken.fail["M1"] = true
	broken.explode["M2"] = true
	broken.fire["M3"] = true

	healthy := newScriptedEvaluator("healthy")
	healthy.fire["M1"] = true
	healthy.fire["M2"] = true

	engine := newTestEngine(t, store, notifier, broken, healthy)
	if err := engine.Run(context.Background(), matchRecords("M1", "M2", "M3"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Broken evaluator still ran against every match.
	for _, id := range []string{"M1", "M2", "M3"} {
		if broken.checked[id] != 1 {
			t.Errorf("broken evaluator checked %s %d times, want 1", id, broken.checked[id])
		}
		if healthy.checked[id] != 1 {
			t.Errorf("healthy evaluator checked %s %d times, want 1", id, healthy.checked[id])
		}
	}

	// healthy triggered for M1, M2; broken triggered for M3.
	if len(notifier.messages) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(notifier.messages))
	}
}

func TestEngine_RestrictSetFiltersMatches(t *testing.T) {
	store := newMemorySeenStore()
	notifier := &recordingNotifier{}
	ev := newScriptedEvaluator("a")
	ev.fire["in"] = true
	ev.fire["out"] = true

	engine := newTestEngine(t, store, notifier, ev)
	restrict := map[string]struct{}{"in": {}}
	if err := engine.Run(context.Background(), matchRecords("in", "out"), restrict); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ev.checked["out"] != 0 {
		t.Errorf("restricted-out match must not be evaluated")
	}
	if len(notifier.messages) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.messages))
	}
}

func TestEngine_NotifyFailureLeavesPairUnseen(t *testing.T) {
	store := newMemorySeenStore()
	notifier := &recordingNotifier{err: errors.New("channel down")}
	ev := newScriptedEvaluator("a")
	ev.fire["M1"] = true

	engine := newTestEngine(t, store, notifier, ev)
	if err := engine.Run(context.Background(), matchRecords("M1"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The durable mark follows the dispatch: a failed dispatch must not mark
	// the pair, so the next cycle can retry.
	if len(store.adds) != 0 {
		t.Errorf("failed dispatch must not persist the pair, got %v", store.adds)
	}
}

func TestEngine_PersistenceOrderFollowsLoopOrder(t *testing.T) {
	store := newMemorySeenStore()
	notifier := &recordingNotifier{}

	first := newScriptedEvaluator("first")
	first.fire["M1"] = true
	first.fire["M2"] = true
	second := newScriptedEvaluator("second")
	second.fire["M1"] = true

	engine := newTestEngine(t, store, notifier, first, second)
	if err := engine.Run(context.Background(), matchRecords("M1", "M2"), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := [][2]string{{"first", "M1"}, {"second", "M1"}, {"first", "M2"}}
	if len(store.adds) != len(want) {
		t.Fatalf("persisted pairs = %v, want %v", store.adds, want)
	}
	for i := range want {
		if store.adds[i] != want[i] {
			t.Fatalf("persisted pairs = %v, want %v", store.adds, want)
		}
	}
}

func TestFormatAlert_IncludesContext(t *testing.T) {
	record := &models.MergedMatchRecord{
		MatchID: "42", StatusID: "2",
		HomeTeam: "Alpha", AwayTeam: "Beta",
		HomeScore: 1, AwayScore: 1,
		Competition: "League", Country: "England",
	}
	notice := &Notice{Type: "over_under", Detail: "Over/Under Line: 3.50"}

	msg := FormatAlert(record, notice, "over_under")
	for _, want := range []string{"Alpha vs Beta", "First Half", "1-1", "League (England)", "Over/Under Line: 3.50", "42"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
