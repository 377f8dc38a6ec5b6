package memory

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/snapshot"
)

func events(ledger string, from, to uint64) []*event.Event {
	var out []*event.Event
	for seq := from; seq <= to; seq++ {
		kind := event.KindTransfer
		var pid *uint64
		if seq%2 == 0 {
			kind = event.KindProposalCreated
			p := seq / 2
			pid = &p
		}
		out = append(out, &event.Event{
			ID:         id.NewEventID(),
			Ledger:     ledger,
			Seq:        seq,
			Kind:       kind,
			ProposalID: pid,
			Value:      uint256.NewInt(seq),
			Timestamp:  time.Now().UTC(),
		})
	}
	return out
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.AppendEvents(ctx, events("a", 1, 6)))
	require.NoError(t, s.AppendEvents(ctx, events("b", 1, 2)))
	// Retried batch is ignored.
	require.NoError(t, s.AppendEvents(ctx, events("a", 5, 7)))

	last, err := s.LastSeq(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, uint64(7), last)

	all, err := s.ListEvents(ctx, "a", event.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 7)
	for i, e := range all {
		require.Equal(t, uint64(i+1), e.Seq)
	}

	created, err := s.ListEvents(ctx, "a", event.ListOpts{Kind: event.KindProposalCreated})
	require.NoError(t, err)
	require.Len(t, created, 3)

	pid := uint64(2)
	forProposal, err := s.ListEvents(ctx, "a", event.ListOpts{ProposalID: &pid})
	require.NoError(t, err)
	require.Len(t, forProposal, 1)
	require.Equal(t, uint64(4), forProposal[0].Seq)

	page, err := s.ListEvents(ctx, "a", event.ListOpts{AfterSeq: 2, Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, uint64(4), page[0].Seq)

	none, err := s.LastSeq(ctx, "missing")
	require.NoError(t, err)
	require.Zero(t, none)
}

func TestListedEventsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.AppendEvents(ctx, events("a", 1, 1)))

	got, err := s.ListEvents(ctx, "a", event.ListOpts{})
	require.NoError(t, err)
	got[0].Value.SetUint64(99)

	again, err := s.ListEvents(ctx, "a", event.ListOpts{})
	require.NoError(t, err)
	require.Equal(t, uint64(1), again[0].Value.Uint64())
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.LatestSnapshot(ctx, "a")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.SaveSnapshot(ctx, &snapshot.Snapshot{ID: id.NewSnapshotID(), Ledger: "a", Seq: 9}))
	require.NoError(t, s.SaveSnapshot(ctx, &snapshot.Snapshot{ID: id.NewSnapshotID(), Ledger: "a", Seq: 4}))

	latest, err := s.LatestSnapshot(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, uint64(9), latest.Seq)
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Ping(ctx), errs.ErrStoreClosed)
	require.ErrorIs(t, s.AppendEvents(ctx, nil), errs.ErrStoreClosed)
	_, err := s.LatestSnapshot(ctx, "a")
	require.ErrorIs(t, err, errs.ErrStoreClosed)
}
