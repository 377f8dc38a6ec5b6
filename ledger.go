package feeledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/feeledger/balance"
	"github.com/xraph/feeledger/event"
	"github.com/xraph/feeledger/fee"
	"github.com/xraph/feeledger/plugin"
	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/role"
	"github.com/xraph/feeledger/store"
	"github.com/xraph/feeledger/types"
)

// Ledger is the fee-charging token and its multisig payout workflow.
//
// One lock serializes every mutation from its first check to its last
// state change, so no operation is partially visible. Events are
// sequenced under the same lock; plugins and the store only ever see
// them after the lock is released.
type Ledger struct {
	mu     sync.RWMutex
	cfg    Config
	name   string
	symbol string
	book   *book
	seq    uint64

	// replayAt pins the proposal clock while journal events are re-applied.
	replayAt time.Time

	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	// Journal
	journalMu            sync.Mutex
	flushMu              sync.Mutex
	pending              []*event.Event
	flushSignal          chan struct{}
	stopChan             chan struct{}
	wg                   sync.WaitGroup
	started              bool
	stopped              bool
	journalBatchSize     int
	journalFlushInterval time.Duration
}

// book is the aggregate the lock guards.
type book struct {
	accounts  *balance.Accounts
	fees      *fee.Ledger
	roles     *role.Registry
	proposals *proposal.Store

	// fee journaled by the last fees_collected event, checked against
	// the transfer that follows it on replay.
	charged *types.Amount
}

func newBook(cfg Config, clock func() time.Time) (*book, error) {
	accounts := balance.NewAccounts()
	fees, err := fee.New(accounts, cfg.PercentageFees)
	if err != nil {
		return nil, err
	}
	roles, err := role.NewRegistry(cfg.Owner, cfg.MinimumSignatures)
	if err != nil {
		return nil, err
	}
	return &book{
		accounts:  accounts,
		fees:      fees,
		roles:     roles,
		proposals: proposal.NewStore(roles, fees, clock),
	}, nil
}

// New creates a Ledger at genesis: the whole supply is minted to the
// owner, who is the only admin. Start restores any history the store
// already holds for cfg.Key().
func New(s store.Store, cfg Config, opts ...Option) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Ledger{
		cfg:                  cfg,
		name:                 cfg.Name,
		symbol:               cfg.Symbol,
		store:                s,
		plugins:              plugin.NewRegistry(),
		logger:               slog.Default(),
		now:                  time.Now,
		flushSignal:          make(chan struct{}, 1),
		stopChan:             make(chan struct{}),
		journalBatchSize:     100,
		journalFlushInterval: time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	if err := l.genesis(); err != nil {
		return nil, err
	}
	return l, nil
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithJournalConfig configures how events are batched to the store.
func WithJournalConfig(batchSize int, flushInterval time.Duration) Option {
	return func(l *Ledger) {
		if batchSize > 0 {
			l.journalBatchSize = batchSize
		}
		if flushInterval > 0 {
			l.journalFlushInterval = flushInterval
		}
	}
}

// WithClock replaces time.Now for event and proposal timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// genesis builds the configured initial state and journals the mint.
func (l *Ledger) genesis() error {
	b, err := newBook(l.cfg, l.clock)
	if err != nil {
		return err
	}
	supply, _ := types.ScaleWhole(l.cfg.TotalSupply, types.Decimals)
	if !supply.IsZero() {
		if err := b.accounts.Mint(l.cfg.Owner, supply); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.book = b
	l.seq = 0
	l.pending = nil
	if !supply.IsZero() {
		l.record(&event.Event{Kind: event.KindTransfer, To: l.cfg.Owner, Value: supply})
	}
	return nil
}

// Start migrates the store, restores the ledger from its latest
// snapshot and any journal entries after it, and begins the journal
// flush worker.
func (l *Ledger) Start(ctx context.Context) error {
	if l.isStarted() {
		return ErrAlreadyStarted
	}

	if err := l.store.Migrate(ctx); err != nil {
		return err
	}
	if err := l.restore(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	l.started = true
	l.mu.Unlock()

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	// Start journal flush worker
	l.wg.Add(1)
	go l.journalWorker(context.WithoutCancel(ctx))

	l.logger.Info("feeledger started",
		"ledger", l.cfg.Key(),
		"seq", l.Seq(),
		"batch_size", l.journalBatchSize,
		"flush_interval", l.journalFlushInterval,
	)
	return nil
}

// Stop drains the journal, writes a final snapshot and closes the store.
func (l *Ledger) Stop() error {
	l.mu.Lock()
	if !l.started || l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	l.mu.Unlock()

	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	var snapErr error
	if _, err := l.Snapshot(ctx); err != nil {
		l.logger.Error("final snapshot failed", "ledger", l.cfg.Key(), "error", err)
		snapErr = err
	}

	l.plugins.EmitShutdown(ctx)

	return errors.Join(snapErr, l.store.Close())
}

func (l *Ledger) isStarted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.started
}

// clock is handed to the proposal store.
func (l *Ledger) clock() time.Time {
	if !l.replayAt.IsZero() {
		return l.replayAt
	}
	return l.now()
}

// fail logs and reports a rejected operation and returns err unchanged.
func (l *Ledger) fail(ctx context.Context, op string, caller types.Address, err error) error {
	l.logger.Debug("operation rejected",
		"op", op,
		"caller", caller.Hex(),
		"error", err,
	)
	l.plugins.EmitOperationFailed(ctx, op, caller, err)
	return err
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Store returns the backing store.
func (l *Ledger) Store() store.Store { return l.store }

// ID returns the key the ledger is journaled under.
func (l *Ledger) ID() string { return l.cfg.Key() }

// Seq returns the sequence number of the last recorded event.
func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Reconciled reports whether balances and the fee pool add up to the
// total supply.
func (l *Ledger) Reconciled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book.fees.Reconciled()
}

func (l *Ledger) String() string {
	return fmt.Sprintf("feeledger(%s, seq=%d)", l.cfg.Key(), l.Seq())
}
