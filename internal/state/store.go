package state

import (
	"context"

	"FareSentinel/internal/snapshot"
)

// Store persists the snapshot of the last run.
type Store interface {
	// Load returns the previous snapshot, or nil when there is none.
	Load(ctx context.Context) (*snapshot.Snapshot, error)
	Save(ctx context.Context, s snapshot.Snapshot) error
	Name() string
}

// NoopStore keeps nothing, so every run is a first run.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Load(context.Context) (*snapshot.Snapshot, error) { return nil, nil }
func (n *NoopStore) Save(context.Context, snapshot.Snapshot) error    { return nil }
func (n *NoopStore) Name() string                                    { return "noop" }
