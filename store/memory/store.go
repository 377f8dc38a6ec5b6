// Package memory is an in-process store.Store for tests and ephemeral
// ledgers.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/snapshot"
	ledgerstore "github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/types"
)

var _ ledgerstore.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// ledger -> events in seq order
	events map[string][]*event.Event

	// ledger -> snapshots in save order
	snapshots map[string][]*snapshot.Snapshot
}

func New() *Store {
	return &Store{
		events:    make(map[string][]*event.Event),
		snapshots: make(map[string][]*snapshot.Snapshot),
	}
}

// ==================== Event journal ====================

func (s *Store) AppendEvents(_ context.Context, events []*event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.ErrStoreClosed
	}

	for _, e := range events {
		journal := s.events[e.Ledger]
		if n := len(journal); n > 0 && e.Seq <= journal[n-1].Seq {
			continue
		}
		s.events[e.Ledger] = append(journal, cloneEvent(e))
	}
	return nil
}

func (s *Store) ListEvents(_ context.Context, ledger string, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errs.ErrStoreClosed
	}

	result := []*event.Event{}
	skipped := 0
	for _, e := range s.events[ledger] {
		if !opts.Matches(e) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		result = append(result, cloneEvent(e))
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) LastSeq(_ context.Context, ledger string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errs.ErrStoreClosed
	}

	journal := s.events[ledger]
	if len(journal) == 0 {
		return 0, nil
	}
	return journal[len(journal)-1].Seq, nil
}

// ==================== Snapshots ====================

func (s *Store) SaveSnapshot(_ context.Context, snap *snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.ErrStoreClosed
	}

	c := *snap
	s.snapshots[snap.Ledger] = append(s.snapshots[snap.Ledger], &c)
	sort.SliceStable(s.snapshots[snap.Ledger], func(i, j int) bool {
		return s.snapshots[snap.Ledger][i].Seq < s.snapshots[snap.Ledger][j].Seq
	})
	return nil
}

func (s *Store) LatestSnapshot(_ context.Context, ledger string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errs.ErrStoreClosed
	}

	snaps := s.snapshots[ledger]
	if len(snaps) == 0 {
		return nil, fmt.Errorf("memory: snapshot for %q: %w", ledger, errs.ErrNotFound)
	}
	c := *snaps[len(snaps)-1]
	return &c, nil
}

// ==================== Core ====================

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errs.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneEvent(e *event.Event) *event.Event {
	c := *e
	if e.Value != nil {
		c.Value = types.Clone(e.Value)
	}
	if e.ProposalID != nil {
		pid := *e.ProposalID
		c.ProposalID = &pid
	}
	return &c
}
