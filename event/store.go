package event

import "context"

// Store is the append-only event journal. Events of one ledger are
// returned in Seq order.
type Store interface {
	AppendEvents(ctx context.Context, events []*Event) error
	ListEvents(ctx context.Context, ledger string, opts ListOpts) ([]*Event, error)
	LastSeq(ctx context.Context, ledger string) (uint64, error)
}
