// Package feeledger provides a fee-charging token ledger with a
// multisignature payout workflow for Go applications.
//
// Every transfer charges the payer a percentage fee that accumulates in
// a collected-fees pool. Admins withdraw from the pool collectively:
// one admin proposes a payout, enough admins sign it, and any admin
// executes or cancels it. The package provides:
//
//   - Exact unsigned 256-bit accounting with overflow-safe fee math
//   - Owner-managed admin set and a global signature threshold
//   - A propose / sign / execute / cancel proposal lifecycle
//   - A batched event journal and snapshots on Postgres, SQLite,
//     MongoDB or memory
//   - Plugins for audit trails and Prometheus metrics
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/feeledger"
//	    "github.com/xraph/feeledger/store/memory"
//	)
//
//	cfg := feeledger.DefaultConfig()
//	cfg.Owner = feeledger.MustParseAddress("0x...")
//
//	l, err := feeledger.New(memory.New(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start restores history and begins the journal worker
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Fees
//
// A transfer of amount costs the payer amount + amount*pct/100, rounded
// down. The fee is checked before the principal and the whole transfer
// is validated before any balance changes. TransferFrom charges the
// holder of the funds, not the spender.
//
// # Proposals
//
// Proposal IDs are sequential from zero and proposals are never
// deleted. A proposal's threshold is fixed when it is created and may
// not exceed the global minimum at that time:
//
//	id, err := l.ProposeCollection(ctx, admin, recipient, amount, 2)
//	_ = l.SignProposal(ctx, admin, id)
//	_ = l.SignProposal(ctx, otherAdmin, id)
//	err = l.ExecuteProposal(ctx, admin, id) // ErrInsufficientFees until the pool covers amount
//
// # Concurrency
//
// A single lock serializes every operation, so each one is atomic:
// a rejected call changes nothing and records no event. Plugins and the
// store are called after the lock is released.
//
// # Persistence
//
// Events carry a gap-free sequence number per ledger and are written to
// the store in batches. Start rebuilds state from the latest snapshot
// and the journal after it; Stop writes a final snapshot.
//
// Journal and snapshot IDs are TypeIDs:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41   // Event ID
//	snap_01h2xcejqtf2nbrexx3vqjhp41  // Snapshot ID
package feeledger
