// Package role tracks the owner identity, the admin set and the global
// minimum signature threshold.
package role

import (
	"bytes"
	"sort"

	"github.com/xraph/feeledger/errs"
	"github.com/xraph/feeledger/types"
)

// Registry gates governance mutations. The owner is fixed at
// construction; admin membership is managed by the owner.
type Registry struct {
	owner         types.Address
	admins        map[types.Address]struct{}
	minSignatures uint64
}

// NewRegistry returns a registry with owner as its only admin.
func NewRegistry(owner types.Address, minSignatures uint64) (*Registry, error) {
	if types.IsZero(owner) {
		return nil, errs.CannotAddZeroAddressAsAdmin()
	}
	if minSignatures < 1 {
		return nil, errs.MinimumSignaturesTooLow(minSignatures)
	}
	return &Registry{
		owner:         owner,
		admins:        map[types.Address]struct{}{owner: {}},
		minSignatures: minSignatures,
	}, nil
}

// Owner returns the owner address.
func (r *Registry) Owner() types.Address { return r.owner }

// IsOwner reports whether addr is the owner.
func (r *Registry) IsOwner(addr types.Address) bool { return addr == r.owner }

// IsAdmin reports whether addr is in the admin set. The owner is not
// implicitly an admin once removed.
func (r *Registry) IsAdmin(addr types.Address) bool {
	_, ok := r.admins[addr]
	return ok
}

// RequireOwner fails with OnlyOwner unless caller is the owner.
func (r *Registry) RequireOwner(caller types.Address) error {
	if !r.IsOwner(caller) {
		return errs.OnlyOwner(caller)
	}
	return nil
}

// RequireAdmin fails with OnlyAdmin unless caller is an admin.
func (r *Registry) RequireAdmin(caller types.Address) error {
	if !r.IsAdmin(caller) {
		return errs.OnlyAdmin(caller)
	}
	return nil
}

// AddAdmin inserts addr into the admin set. It reports whether the set
// changed; adding an existing admin is not an error.
func (r *Registry) AddAdmin(caller, addr types.Address) (bool, error) {
	if err := r.RequireOwner(caller); err != nil {
		return false, err
	}
	if types.IsZero(addr) {
		return false, errs.CannotAddZeroAddressAsAdmin()
	}
	if r.IsAdmin(addr) {
		return false, nil
	}
	r.admins[addr] = struct{}{}
	return true, nil
}

// RemoveAdmin deletes addr from the admin set. It reports whether the
// set changed; removing a non-member is not an error.
func (r *Registry) RemoveAdmin(caller, addr types.Address) (bool, error) {
	if err := r.RequireOwner(caller); err != nil {
		return false, err
	}
	if types.IsZero(addr) {
		return false, errs.CannotRemoveZeroAddress()
	}
	if !r.IsAdmin(addr) {
		return false, nil
	}
	delete(r.admins, addr)
	return true, nil
}

// MinimumSignatures returns the global threshold bounding per-proposal
// thresholds.
func (r *Registry) MinimumSignatures() uint64 { return r.minSignatures }

// SetMinimumSignatures updates the global threshold. It may exceed the
// current admin count.
func (r *Registry) SetMinimumSignatures(caller types.Address, n uint64) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	if n < 1 {
		return errs.MinimumSignaturesTooLow(n)
	}
	r.minSignatures = n
	return nil
}

// Admins returns the admin set ordered by address bytes.
func (r *Registry) Admins() []types.Address {
	out := make([]types.Address, 0, len(r.admins))
	for a := range r.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}

// State is a detached copy of the registry.
type State struct {
	Owner             types.Address   `json:"owner"`
	Admins            []types.Address `json:"admins"`
	MinimumSignatures uint64          `json:"minimum_signatures"`
}

// Export copies the registry.
func (r *Registry) Export() State {
	return State{Owner: r.owner, Admins: r.Admins(), MinimumSignatures: r.minSignatures}
}

// Restore replaces the admin set and threshold. The owner must match,
// since owner identity never changes.
func (r *Registry) Restore(state State) error {
	if state.Owner != r.owner {
		return errs.OnlyOwner(state.Owner)
	}
	if state.MinimumSignatures < 1 {
		return errs.MinimumSignaturesTooLow(state.MinimumSignatures)
	}
	admins := make(map[types.Address]struct{}, len(state.Admins))
	for _, a := range state.Admins {
		if types.IsZero(a) {
			return errs.CannotAddZeroAddressAsAdmin()
		}
		admins[a] = struct{}{}
	}
	r.admins = admins
	r.minSignatures = state.MinimumSignatures
	return nil
}
