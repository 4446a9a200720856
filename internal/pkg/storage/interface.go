package storage

import (
	"context"
)

// SeenStore is the durable dedup set behind the alert engine: one persisted
// set of match ids per alert name. Load is called once at engine construction;
// Add must be durable before it returns so a crash mid-pass never leaves a
// notified pair unmarked. Sets never shrink; there is no expiry.
type SeenStore interface {
	// Load returns the persisted set for one alert. A store with no data for
	// the alert returns an empty set, not an error.
	Load(ctx context.Context, alertName string) (map[string]struct{}, error)

	// Add durably records that alertName has handled matchID.
	Add(ctx context.Context, alertName, matchID string) error

	// Close releases the underlying resources.
	Close() error
}
