package snapshot

import "context"

// Store persists snapshots. LatestSnapshot returns the one with the
// highest Seq, or an error wrapping errs.ErrNotFound when none exists.
type Store interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	LatestSnapshot(ctx context.Context, ledger string) (*Snapshot, error)
}
