package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/snapshot"
	ledgerstore "github.com/xraph/feeledger/store"
)

// Collection name constants.
const (
	colEvents    = "feeledger_events"
	colSnapshots = "feeledger_snapshots"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the journal and snapshot collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("feeledger/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Event journal ====================

func (s *Store) AppendEvents(ctx context.Context, events []*event.Event) error {
	for _, e := range events {
		if _, err := s.mdb.NewInsert(toEventModel(e)).Exec(ctx); err != nil {
			// A retried batch hits the (ledger, seq) unique index.
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("feeledger/mongo: append event %d: %w", e.Seq, err)
		}
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, ledger string, opts event.ListOpts) ([]*event.Event, error) {
	filter := bson.M{"ledger": ledger}
	if opts.AfterSeq > 0 {
		filter["seq"] = bson.M{"$gt": int64(opts.AfterSeq)}
	}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}
	if opts.ProposalID != nil {
		filter["proposal_id"] = int64(*opts.ProposalID)
	}

	var models []eventModel
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "seq", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("feeledger/mongo: list events: %w", err)
	}

	result := make([]*event.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) LastSeq(ctx context.Context, ledger string) (uint64, error) {
	var m eventModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"ledger": ledger}).
		Sort(bson.D{{Key: "seq", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("feeledger/mongo: last seq: %w", err)
	}
	return uint64(m.Seq), nil
}

// ==================== Snapshots ====================

func (s *Store) SaveSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	m, err := toSnapshotModel(snap)
	if err != nil {
		return err
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("feeledger/mongo: save snapshot: %w", err)
	}
	return nil
}

func (s *Store) LatestSnapshot(ctx context.Context, ledger string) (*snapshot.Snapshot, error) {
	var m snapshotModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"ledger": ledger}).
		Sort(bson.D{{Key: "seq", Value: -1}, {Key: "created_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("feeledger/mongo: snapshot for %q: %w", ledger, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("feeledger/mongo: latest snapshot: %w", err)
	}
	return fromSnapshotModel(&m)
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all feeledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colEvents: {
			{
				Keys:    bson.D{{Key: "ledger", Value: 1}, {Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "ledger", Value: 1}, {Key: "kind", Value: 1}, {Key: "seq", Value: 1}}},
			{
				Keys:    bson.D{{Key: "ledger", Value: 1}, {Key: "proposal_id", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
		colSnapshots: {
			{Keys: bson.D{{Key: "ledger", Value: 1}, {Key: "seq", Value: -1}}},
		},
	}
}
