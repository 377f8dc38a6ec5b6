package postgres

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/id"
	"github.com/xraph/feeledger/snapshot"
	ledgerstore "github.com/xraph/feeledger/store"
)

// ==================== Event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:feeledger_events"`

	ID            string    `grove:"id,pk"`
	Ledger        string    `grove:"ledger"`
	Seq           int64     `grove:"seq"`
	Kind          string    `grove:"kind"`
	ProposalID    *int64    `grove:"proposal_id"`
	FromAddr      string    `grove:"from_addr"`
	ToAddr        string    `grove:"to_addr"`
	Admin         string    `grove:"admin"`
	Value         string    `grove:"value"`
	MinSignatures int64     `grove:"min_signatures"`
	Percentage    int64     `grove:"percentage"`
	Timestamp     time.Time `grove:"timestamp"`
	CreatedAt     time.Time `grove:"created_at"`
}

func toEventModel(e *event.Event) *eventModel {
	m := &eventModel{
		ID:            e.ID.String(),
		Ledger:        e.Ledger,
		Seq:           int64(e.Seq),
		Kind:          string(e.Kind),
		FromAddr:      ledgerstore.EncodeAddress(e.From),
		ToAddr:        ledgerstore.EncodeAddress(e.To),
		Admin:         ledgerstore.EncodeAddress(e.Admin),
		Value:         ledgerstore.EncodeAmount(e.Value),
		MinSignatures: int64(e.MinSignatures),
		Percentage:    int64(e.Percentage),
		Timestamp:     e.Timestamp.UTC(),
		CreatedAt:     now(),
	}
	if e.ProposalID != nil {
		pid := int64(*e.ProposalID)
		m.ProposalID = &pid
	}
	return m
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	e := &event.Event{
		ID:            evtID,
		Ledger:        m.Ledger,
		Seq:           uint64(m.Seq),
		Kind:          event.Kind(m.Kind),
		MinSignatures: uint64(m.MinSignatures),
		Percentage:    uint64(m.Percentage),
		Timestamp:     m.Timestamp,
	}
	if m.ProposalID != nil {
		pid := uint64(*m.ProposalID)
		e.ProposalID = &pid
	}
	if e.From, err = ledgerstore.DecodeAddress(m.FromAddr); err != nil {
		return nil, err
	}
	if e.To, err = ledgerstore.DecodeAddress(m.ToAddr); err != nil {
		return nil, err
	}
	if e.Admin, err = ledgerstore.DecodeAddress(m.Admin); err != nil {
		return nil, err
	}
	if e.Value, err = ledgerstore.DecodeAmount(m.Value); err != nil {
		return nil, err
	}
	return e, nil
}

// ==================== Snapshot models ====================

type snapshotModel struct {
	grove.BaseModel `grove:"table:feeledger_snapshots"`

	ID        string    `grove:"id,pk"`
	Ledger    string    `grove:"ledger"`
	Seq       int64     `grove:"seq"`
	State     string    `grove:"state,type:jsonb"`
	CreatedAt time.Time `grove:"created_at"`
}

func toSnapshotModel(s *snapshot.Snapshot) (*snapshotModel, error) {
	state, err := ledgerstore.EncodeState(s.State)
	if err != nil {
		return nil, err
	}
	return &snapshotModel{
		ID:        s.ID.String(),
		Ledger:    s.Ledger,
		Seq:       int64(s.Seq),
		State:     state,
		CreatedAt: s.CreatedAt.UTC(),
	}, nil
}

func fromSnapshotModel(m *snapshotModel) (*snapshot.Snapshot, error) {
	snapID, err := id.ParseSnapshotID(m.ID)
	if err != nil {
		return nil, err
	}
	state, err := ledgerstore.DecodeState(m.State)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", m.ID, err)
	}
	return &snapshot.Snapshot{
		ID:        snapID,
		Ledger:    m.Ledger,
		Seq:       uint64(m.Seq),
		State:     state,
		CreatedAt: m.CreatedAt,
	}, nil
}
