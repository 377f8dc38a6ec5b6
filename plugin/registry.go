package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/xraph/feeledger/proposal"
	"github.com/xraph/feeledger/types"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages registered plugins and caches them per hook type.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit              []OnInit
	onShutdown          []OnShutdown
	onTransfer          []OnTransfer
	onFeesCollected     []OnFeesCollected
	onApproval          []OnApproval
	onProposalCreated   []OnProposalCreated
	onProposalSigned    []OnProposalSigned
	onProposalExecuted  []OnProposalExecuted
	onProposalCancelled []OnProposalCancelled
	onAdminChanged      []OnAdminChanged
	onSettingsChanged   []OnSettingsChanged
	onOperationFailed   []OnOperationFailed
	onJournalFlushed    []OnJournalFlushed
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin and caches the hooks it implements.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnFeesCollected); ok {
		r.onFeesCollected = append(r.onFeesCollected, v)
	}
	if v, ok := p.(OnApproval); ok {
		r.onApproval = append(r.onApproval, v)
	}
	if v, ok := p.(OnProposalCreated); ok {
		r.onProposalCreated = append(r.onProposalCreated, v)
	}
	if v, ok := p.(OnProposalSigned); ok {
		r.onProposalSigned = append(r.onProposalSigned, v)
	}
	if v, ok := p.(OnProposalExecuted); ok {
		r.onProposalExecuted = append(r.onProposalExecuted, v)
	}
	if v, ok := p.(OnProposalCancelled); ok {
		r.onProposalCancelled = append(r.onProposalCancelled, v)
	}
	if v, ok := p.(OnAdminChanged); ok {
		r.onAdminChanged = append(r.onAdminChanged, v)
	}
	if v, ok := p.(OnSettingsChanged); ok {
		r.onSettingsChanged = append(r.onSettingsChanged, v)
	}
	if v, ok := p.(OnOperationFailed); ok {
		r.onOperationFailed = append(r.onOperationFailed, v)
	}
	if v, ok := p.(OnJournalFlushed); ok {
		r.onJournalFlushed = append(r.onJournalFlushed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnTransfer", reflect.TypeOf((*OnTransfer)(nil)).Elem()},
	{"OnFeesCollected", reflect.TypeOf((*OnFeesCollected)(nil)).Elem()},
	{"OnApproval", reflect.TypeOf((*OnApproval)(nil)).Elem()},
	{"OnProposalCreated", reflect.TypeOf((*OnProposalCreated)(nil)).Elem()},
	{"OnProposalSigned", reflect.TypeOf((*OnProposalSigned)(nil)).Elem()},
	{"OnProposalExecuted", reflect.TypeOf((*OnProposalExecuted)(nil)).Elem()},
	{"OnProposalCancelled", reflect.TypeOf((*OnProposalCancelled)(nil)).Elem()},
	{"OnAdminChanged", reflect.TypeOf((*OnAdminChanged)(nil)).Elem()},
	{"OnSettingsChanged", reflect.TypeOf((*OnSettingsChanged)(nil)).Elem()},
	{"OnOperationFailed", reflect.TypeOf((*OnOperationFailed)(nil)).Elem()},
	{"OnJournalFlushed", reflect.TypeOf((*OnJournalFlushed)(nil)).Elem()},
}

func implementedInterfaces(p Plugin) []string {
	var names []string
	t := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if t.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name, or nil.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission
// ──────────────────────────────────────────────────

// emit calls fn for every hook in hooks, logging failures. Hook errors
// never propagate to the ledger caller.
func emit[H Plugin](ctx context.Context, r *Registry, hook string, hooks []H, fn func(H) error) {
	for _, p := range hooks {
		if err := r.callWithTimeout(ctx, p.Name(), func() error { return fn(p) }); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

func hooksOf[H any](r *Registry, hooks *[]H) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *hooks
}

func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	emit(ctx, r, "OnInit", hooksOf(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, ledger)
	})
}

func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", hooksOf(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

func (r *Registry) EmitTransfer(ctx context.Context, from, to types.Address, value *uint256.Int) {
	emit(ctx, r, "OnTransfer", hooksOf(r, &r.onTransfer), func(p OnTransfer) error {
		return p.OnTransfer(ctx, from, to, types.Clone(value))
	})
}

func (r *Registry) EmitFeesCollected(ctx context.Context, payer types.Address, fee, pool *uint256.Int) {
	emit(ctx, r, "OnFeesCollected", hooksOf(r, &r.onFeesCollected), func(p OnFeesCollected) error {
		return p.OnFeesCollected(ctx, payer, types.Clone(fee), types.Clone(pool))
	})
}

func (r *Registry) EmitApproval(ctx context.Context, owner, spender types.Address, value *uint256.Int) {
	emit(ctx, r, "OnApproval", hooksOf(r, &r.onApproval), func(p OnApproval) error {
		return p.OnApproval(ctx, owner, spender, types.Clone(value))
	})
}

func (r *Registry) EmitProposalCreated(ctx context.Context, prop *proposal.Proposal) {
	emit(ctx, r, "OnProposalCreated", hooksOf(r, &r.onProposalCreated), func(p OnProposalCreated) error {
		return p.OnProposalCreated(ctx, prop.Clone())
	})
}

func (r *Registry) EmitProposalSigned(ctx context.Context, prop *proposal.Proposal, admin types.Address) {
	emit(ctx, r, "OnProposalSigned", hooksOf(r, &r.onProposalSigned), func(p OnProposalSigned) error {
		return p.OnProposalSigned(ctx, prop.Clone(), admin)
	})
}

func (r *Registry) EmitProposalExecuted(ctx context.Context, prop *proposal.Proposal) {
	emit(ctx, r, "OnProposalExecuted", hooksOf(r, &r.onProposalExecuted), func(p OnProposalExecuted) error {
		return p.OnProposalExecuted(ctx, prop.Clone())
	})
}

func (r *Registry) EmitProposalCancelled(ctx context.Context, prop *proposal.Proposal) {
	emit(ctx, r, "OnProposalCancelled", hooksOf(r, &r.onProposalCancelled), func(p OnProposalCancelled) error {
		return p.OnProposalCancelled(ctx, prop.Clone())
	})
}

func (r *Registry) EmitAdminChanged(ctx context.Context, admin types.Address, added bool) {
	emit(ctx, r, "OnAdminChanged", hooksOf(r, &r.onAdminChanged), func(p OnAdminChanged) error {
		return p.OnAdminChanged(ctx, admin, added)
	})
}

func (r *Registry) EmitSettingsChanged(ctx context.Context, setting string, value uint64) {
	emit(ctx, r, "OnSettingsChanged", hooksOf(r, &r.onSettingsChanged), func(p OnSettingsChanged) error {
		return p.OnSettingsChanged(ctx, setting, value)
	})
}

func (r *Registry) EmitOperationFailed(ctx context.Context, op string, caller types.Address, opErr error) {
	emit(ctx, r, "OnOperationFailed", hooksOf(r, &r.onOperationFailed), func(p OnOperationFailed) error {
		return p.OnOperationFailed(ctx, op, caller, opErr)
	})
}

func (r *Registry) EmitJournalFlushed(ctx context.Context, count int, elapsed time.Duration) {
	emit(ctx, r, "OnJournalFlushed", hooksOf(r, &r.onJournalFlushed), func(p OnJournalFlushed) error {
		return p.OnJournalFlushed(ctx, count, elapsed)
	})
}

// callWithTimeout runs fn, giving up after the registry timeout. A
// plugin that times out keeps running in its goroutine; the ledger does
// not wait for it.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
