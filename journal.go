package feeledger

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/types"
)

// record sequences e and queues it for the store. Callers hold l.mu.
func (l *Ledger) record(e *event.Event) *event.Event {
	l.seq++
	e.ID = id.NewEventID()
	e.Ledger = l.cfg.Key()
	e.Seq = l.seq
	e.Timestamp = l.clock().UTC()

	l.journalMu.Lock()
	l.pending = append(l.pending, e)
	full := len(l.pending) >= l.journalBatchSize
	l.journalMu.Unlock()

	if full {
		select {
		case l.flushSignal <- struct{}{}:
		default:
		}
	}
	return e
}

func proposalRef(id uint64) *uint64 { return &id }

func transferEvent(from, to types.Address, value *uint256.Int) *event.Event {
	return &event.Event{Kind: event.KindTransfer, From: from, To: to, Value: types.Clone(value)}
}

// journalWorker flushes pending events to the store.
func (l *Ledger) journalWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.journalFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			// Final flush
			_ = l.flush(ctx) //nolint:errcheck // logged in flush
			return

		case <-l.flushSignal:
			_ = l.flush(ctx) //nolint:errcheck // logged in flush

		case <-ticker.C:
			_ = l.flush(ctx) //nolint:errcheck // logged in flush
		}
	}
}

// flush writes every pending event in one batch. On failure the batch
// is put back in front of anything queued meanwhile and retried on the
// next flush; the store ignores already-written sequence numbers.
func (l *Ledger) flush(ctx context.Context) error {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.journalMu.Lock()
	batch := l.pending
	l.pending = nil
	l.journalMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	if err := l.store.AppendEvents(ctx, batch); err != nil {
		l.journalMu.Lock()
		l.pending = append(batch, l.pending...)
		l.journalMu.Unlock()

		l.logger.Error("failed to flush journal batch",
			"error", err,
			"batch_size", len(batch),
		)
		return err
	}

	elapsed := time.Since(start)
	l.plugins.EmitJournalFlushed(ctx, len(batch), elapsed)

	l.logger.Debug("flushed journal batch",
		"batch_size", len(batch),
		"last_seq", batch[len(batch)-1].Seq,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return nil
}

// Flush writes pending events to the store now.
func (l *Ledger) Flush(ctx context.Context) error {
	return l.flush(ctx)
}

// Pending returns the number of events not yet written to the store.
func (l *Ledger) Pending() int {
	l.journalMu.Lock()
	defer l.journalMu.Unlock()
	return len(l.pending)
}

// Events flushes the journal and lists it from the store.
func (l *Ledger) Events(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	if err := l.flush(ctx); err != nil {
		return nil, err
	}
	return l.store.ListEvents(ctx, l.cfg.Key(), opts)
}
