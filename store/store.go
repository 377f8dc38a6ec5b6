// Package store defines the persistence contract of a feeledger Ledger.
//
// The ledger keeps its aggregate in memory and persists two things: an
// append-only journal of events and periodic snapshots of the whole
// aggregate. Backends live in the subpackages memory, postgres, sqlite
// and mongo.
package store

import (
	"context"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/snapshot"
)

// Store is the unified storage interface.
type Store interface {
	// Event journal. AppendEvents ignores events whose (ledger, seq) is
	// already stored, so a retried batch is not duplicated.
	AppendEvents(ctx context.Context, events []*event.Event) error
	ListEvents(ctx context.Context, ledger string, opts event.ListOpts) ([]*event.Event, error)
	LastSeq(ctx context.Context, ledger string) (uint64, error)

	// Snapshots
	SaveSnapshot(ctx context.Context, s *snapshot.Snapshot) error
	LatestSnapshot(ctx context.Context, ledger string) (*snapshot.Snapshot, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ event.Store    = Store(nil)
	_ snapshot.Store = Store(nil)
)
