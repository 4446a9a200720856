package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Ensure FileSeenStore implements SeenStore
var _ SeenStore = (*FileSeenStore)(nil)

// FileSeenStore keeps one JSON file per alert under dir. Writes go through a
// temp file and rename so a crash mid-write never corrupts the set.
type FileSeenStore struct {
	dir  string
	seen map[string]map[string]struct{}
}

// NewFileSeenStore creates the store directory if needed.
func NewFileSeenStore(dir string) (*FileSeenStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create seen dir: %w", err)
	}
	return &FileSeenStore{
		dir:  dir,
		seen: make(map[string]map[string]struct{}),
	}, nil
}

func (s *FileSeenStore) path(alertName string) string {
	return filepath.Join(s.dir, alertName+"_seen.json")
}

// Load reads the persisted set for one alert. A missing file yields an empty
// set. Stale temp files from a previous crash are removed.
func (s *FileSeenStore) Load(_ context.Context, alertName string) (map[string]struct{}, error) {
	path := s.path(alertName)

	if _, err := os.Stat(path + ".tmp"); err == nil {
		_ = os.Remove(path + ".tmp")
	}

	set := make(map[string]struct{})
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.seen[alertName] = set
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seen file for %s: %w", alertName, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse seen file for %s: %w", alertName, err)
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.seen[alertName] = set
	return set, nil
}

// Add records the match id and flushes the full set for the alert to disk.
func (s *FileSeenStore) Add(ctx context.Context, alertName, matchID string) error {
	set, ok := s.seen[alertName]
	if !ok {
		loaded, err := s.Load(ctx, alertName)
		if err != nil {
			return err
		}
		set = loaded
	}
	set[matchID] = struct{}{}
	return s.flush(alertName, set)
}

func (s *FileSeenStore) flush(alertName string, set map[string]struct{}) error {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen set for %s: %w", alertName, err)
	}

	path := s.path(alertName)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seen file for %s: %w", alertName, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename seen file for %s: %w", alertName, err)
	}
	return nil
}

func (s *FileSeenStore) Close() error {
	return nil
}
