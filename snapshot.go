package feeledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/snapshot"
	"github.com/xraph/feeledger/types"
)

// Snapshot writes the whole ledger state at the current sequence to
// the store. Pending events are flushed first so the journal never
// trails a snapshot.
func (l *Ledger) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	l.mu.RLock()
	snap := &snapshot.Snapshot{
		ID:        id.NewSnapshotID(),
		Ledger:    l.cfg.Key(),
		Seq:       l.seq,
		State:     l.exportLocked(),
		CreatedAt: l.now().UTC(),
	}
	l.mu.RUnlock()

	if err := l.flush(ctx); err != nil {
		return nil, err
	}
	if err := l.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	l.logger.Info("snapshot written",
		"ledger", snap.Ledger,
		"snapshot_id", snap.ID.String(),
		"seq", snap.Seq,
	)
	return snap, nil
}

// State returns a detached copy of the ledger state.
func (l *Ledger) State() snapshot.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.exportLocked()
}

func (l *Ledger) exportLocked() snapshot.State {
	return snapshot.State{
		Name:      l.name,
		Symbol:    l.symbol,
		Accounts:  l.book.accounts.Export(),
		Fees:      l.book.fees.Export(),
		Roles:     l.book.roles.Export(),
		Proposals: l.book.proposals.Export(),
	}
}

// restore rebuilds the ledger from the latest snapshot and replays the
// journal after it. A store with no history keeps the genesis state.
func (l *Ledger) restore(ctx context.Context) error {
	key := l.cfg.Key()

	last, err := l.store.LastSeq(ctx, key)
	if err != nil {
		return err
	}
	snap, err := l.store.LatestSnapshot(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrNotFound):
		snap = nil
	default:
		return err
	}
	if snap == nil && last == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prevBook, prevSeq := l.book, l.seq
	rollback := func(err error) error {
		l.book, l.seq = prevBook, prevSeq
		l.replayAt = time.Time{}
		return err
	}

	b, err := newBook(l.cfg, l.clock)
	if err != nil {
		return err
	}
	l.book, l.seq = b, 0

	name, symbol := l.cfg.Name, l.cfg.Symbol
	if snap != nil {
		if err := b.restore(snap.State); err != nil {
			return rollback(fmt.Errorf("feeledger: restore snapshot %s: %w", snap.ID, err))
		}
		l.seq = snap.Seq
		name, symbol = snap.State.Name, snap.State.Symbol
	}

	replayed := 0
	for {
		events, err := l.store.ListEvents(ctx, key, event.ListOpts{AfterSeq: l.seq, Limit: l.journalBatchSize})
		if err != nil {
			return rollback(err)
		}
		if len(events) == 0 {
			break
		}
		for _, e := range events {
			if e.Seq != l.seq+1 {
				return rollback(fmt.Errorf("%w: expected seq %d, found %d", ErrJournalGap, l.seq+1, e.Seq))
			}
			l.replayAt = e.Timestamp
			if err := b.apply(e); err != nil {
				return rollback(fmt.Errorf("feeledger: replay %s seq %d: %w", e.Kind, e.Seq, err))
			}
			l.seq = e.Seq
			replayed++
		}
	}
	l.replayAt = time.Time{}

	if !b.fees.Reconciled() {
		return rollback(fmt.Errorf("%w: restored balances do not add up to the supply", ErrInvalidConfig))
	}

	l.name, l.symbol = name, symbol

	// The genesis mint is already part of the restored history.
	l.journalMu.Lock()
	l.pending = nil
	l.journalMu.Unlock()

	attrs := []any{"ledger", key, "seq", l.seq, "replayed", replayed}
	if snap != nil {
		attrs = append(attrs, "snapshot_id", snap.ID.String(), "snapshot_seq", snap.Seq)
	}
	l.logger.Info("feeledger restored", attrs...)
	return nil
}

func (b *book) restore(st snapshot.State) error {
	if err := b.accounts.Restore(st.Accounts); err != nil {
		return err
	}
	if err := b.fees.Restore(st.Fees); err != nil {
		return err
	}
	if err := b.roles.Restore(st.Roles); err != nil {
		return err
	}
	return b.proposals.Restore(st.Proposals)
}

// apply re-runs the operation that recorded e. Proposal and role
// operations pass their own checks again, so a journal that could not
// have been produced by this ledger is rejected.
func (b *book) apply(e *event.Event) error {
	switch e.Kind {
	case event.KindTransfer:
		switch {
		case e.ProposalID != nil:
			// Pool payout, applied with proposal_executed.
			return nil
		case types.IsZero(e.From):
			return b.accounts.Mint(e.To, orZero(e.Value))
		default:
			want := orZero(b.charged)
			b.charged = nil
			charged, err := b.fees.Transfer(e.From, e.From, e.To, orZero(e.Value))
			if err != nil {
				return err
			}
			if !charged.Eq(want) {
				return fmt.Errorf("%w: transfer charged fee %s, journal recorded %s", ErrJournalGap, charged.Dec(), want.Dec())
			}
			return nil
		}

	case event.KindFeesCollected:
		// Charged again by the transfer that follows.
		b.charged = types.Clone(orZero(e.Value))
		return nil

	case event.KindApproval:
		return b.accounts.Approve(e.From, e.To, orZero(e.Value))

	case event.KindProposalCreated:
		want, err := proposalOf(e)
		if err != nil {
			return err
		}
		p, err := b.proposals.Propose(e.Admin, e.To, orZero(e.Value), e.MinSignatures)
		if err != nil {
			return err
		}
		if p.ID != want {
			return fmt.Errorf("%w: proposal %d replayed as %d", ErrJournalGap, want, p.ID)
		}
		return nil

	case event.KindProposalSigned, event.KindProposalExecuted, event.KindProposalCancelled:
		pid, err := proposalOf(e)
		if err != nil {
			return err
		}
		switch e.Kind {
		case event.KindProposalSigned:
			_, err = b.proposals.Sign(e.Admin, pid)
		case event.KindProposalExecuted:
			_, err = b.proposals.Execute(e.Admin, pid)
		default:
			_, err = b.proposals.Cancel(e.Admin, pid)
		}
		return err

	case event.KindAdminAdded:
		_, err := b.roles.AddAdmin(b.roles.Owner(), e.Admin)
		return err

	case event.KindAdminRemoved:
		_, err := b.roles.RemoveAdmin(b.roles.Owner(), e.Admin)
		return err

	case event.KindMinimumSignaturesUpdated:
		return b.roles.SetMinimumSignatures(b.roles.Owner(), e.MinSignatures)

	case event.KindPercentageFeesUpdated:
		return b.fees.SetPercentage(e.Percentage)

	default:
		return fmt.Errorf("feeledger: unknown event kind %q", e.Kind)
	}
}

func proposalOf(e *event.Event) (uint64, error) {
	if e.ProposalID == nil {
		return 0, fmt.Errorf("%w: %s event without proposal id", ErrJournalGap, e.Kind)
	}
	return *e.ProposalID, nil
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return types.Zero()
	}
	return v
}
