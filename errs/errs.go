// Package errs defines the failure taxonomy shared by every feeledger
// component.
//
// Each failure is a *Error carrying the context of the rejected call
// (proposal ID, offending address, held and required quantities). It
// unwraps to one of the sentinel values below, so callers branch with
// errors.Is:
//
//	if errors.Is(err, errs.ErrInsufficientFees) { ... }
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Authorization failures. Always checked first in a gated operation.
var (
	ErrOnlyOwner = errors.New("feeledger: caller is not the owner")
	ErrOnlyAdmin = errors.New("feeledger: caller is not an admin")
)

// Validation failures. Rejected before any state is read for mutation.
var (
	ErrMinimumSignaturesTooLow     = errors.New("feeledger: minimum signatures too low")
	ErrMinimumSignaturesTooHigh    = errors.New("feeledger: minimum signatures too high")
	ErrPercentageFeesTooHigh       = errors.New("feeledger: percentage fees too high")
	ErrCannotProposeToZeroAddress  = errors.New("feeledger: cannot propose to zero address")
	ErrCannotProposeWithZeroValue  = errors.New("feeledger: cannot propose with zero value")
	ErrCannotAddZeroAddressAsAdmin = errors.New("feeledger: cannot add zero address as admin")
	ErrCannotRemoveZeroAddress     = errors.New("feeledger: cannot remove zero address")
	ErrInvalidSender               = errors.New("feeledger: invalid sender")
	ErrInvalidReceiver             = errors.New("feeledger: invalid receiver")
	ErrInvalidApprover             = errors.New("feeledger: invalid approver")
	ErrInvalidSpender              = errors.New("feeledger: invalid spender")
	ErrInvalidConfig               = errors.New("feeledger: invalid configuration")
)

// Lookup failures.
var (
	ErrProposalNotFound = errors.New("feeledger: proposal not found")
	ErrNotFound         = errors.New("feeledger: not found")
)

// Store and lifecycle failures.
var (
	ErrStoreClosed    = errors.New("feeledger: store is closed")
	ErrAlreadyStarted = errors.New("feeledger: ledger already started")
)

// State-conflict failures, checked in this precedence order.
var (
	ErrProposalAlreadyExecuted     = errors.New("feeledger: proposal already executed")
	ErrProposalAlreadyCancelled    = errors.New("feeledger: proposal already cancelled")
	ErrProposalAlreadySigned       = errors.New("feeledger: proposal already signed")
	ErrProposalNotEnoughSignatures = errors.New("feeledger: proposal does not have enough signatures")
)

// Resource-insufficiency failures.
var (
	ErrInsufficientFees      = errors.New("feeledger: insufficient collected fees")
	ErrInsufficientBalance   = errors.New("feeledger: insufficient balance")
	ErrInsufficientAllowance = errors.New("feeledger: insufficient allowance")
	ErrSupplyOverflow        = errors.New("feeledger: total supply overflow")
)

// Error is a failure carrying the context of the rejected operation.
// Zero-valued fields are omitted from the message.
type Error struct {
	Kind       error
	ProposalID *uint64
	Address    *common.Address
	Have       *uint256.Int
	Want       *uint256.Int
}

func (e *Error) Error() string {
	var parts []string
	if e.ProposalID != nil {
		parts = append(parts, fmt.Sprintf("proposal=%d", *e.ProposalID))
	}
	if e.Address != nil {
		parts = append(parts, "address="+e.Address.Hex())
	}
	if e.Have != nil {
		parts = append(parts, "have="+e.Have.Dec())
	}
	if e.Want != nil {
		parts = append(parts, "want="+e.Want.Dec())
	}
	if len(parts) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + " (" + strings.Join(parts, " ") + ")"
}

// Unwrap returns the sentinel kind.
func (e *Error) Unwrap() error { return e.Kind }

func withProposal(kind error, id uint64) *Error {
	return &Error{Kind: kind, ProposalID: &id}
}

func withAddress(kind error, addr common.Address) *Error {
	return &Error{Kind: kind, Address: &addr}
}

func withQuantities(kind error, addr *common.Address, have, want *uint256.Int) *Error {
	return &Error{
		Kind:    kind,
		Address: addr,
		Have:    new(uint256.Int).Set(have),
		Want:    new(uint256.Int).Set(want),
	}
}

// ──────────────────────────────────────────────────
// Constructors
// ──────────────────────────────────────────────────

func OnlyOwner(caller common.Address) error { return withAddress(ErrOnlyOwner, caller) }

func OnlyAdmin(caller common.Address) error { return withAddress(ErrOnlyAdmin, caller) }

func MinimumSignaturesTooLow(n uint64) error {
	return &Error{Kind: ErrMinimumSignaturesTooLow, Have: uint256.NewInt(n), Want: uint256.NewInt(1)}
}

func MinimumSignaturesTooHigh(n, limit uint64) error {
	return &Error{Kind: ErrMinimumSignaturesTooHigh, Have: uint256.NewInt(n), Want: uint256.NewInt(limit)}
}

func PercentageFeesTooHigh(pct uint64) error {
	return &Error{Kind: ErrPercentageFeesTooHigh, Have: uint256.NewInt(pct), Want: uint256.NewInt(100)}
}

func CannotProposeToZeroAddress() error { return &Error{Kind: ErrCannotProposeToZeroAddress} }

func CannotProposeWithZeroValue() error { return &Error{Kind: ErrCannotProposeWithZeroValue} }

func CannotAddZeroAddressAsAdmin() error { return &Error{Kind: ErrCannotAddZeroAddressAsAdmin} }

func CannotRemoveZeroAddress() error { return &Error{Kind: ErrCannotRemoveZeroAddress} }

func InvalidSender(addr common.Address) error { return withAddress(ErrInvalidSender, addr) }

func InvalidReceiver(addr common.Address) error { return withAddress(ErrInvalidReceiver, addr) }

func InvalidApprover(addr common.Address) error { return withAddress(ErrInvalidApprover, addr) }

func InvalidSpender(addr common.Address) error { return withAddress(ErrInvalidSpender, addr) }

func ProposalNotFound(id uint64) error { return withProposal(ErrProposalNotFound, id) }

func ProposalAlreadyExecuted(id uint64) error { return withProposal(ErrProposalAlreadyExecuted, id) }

func ProposalAlreadyCancelled(id uint64) error { return withProposal(ErrProposalAlreadyCancelled, id) }

func ProposalAlreadySigned(id uint64, admin common.Address) error {
	e := withProposal(ErrProposalAlreadySigned, id)
	e.Address = &admin
	return e
}

func ProposalNotEnoughSignatures(id uint64, have, want uint64) error {
	e := withProposal(ErrProposalNotEnoughSignatures, id)
	e.Have = uint256.NewInt(have)
	e.Want = uint256.NewInt(want)
	return e
}

func InsufficientFees(have, want *uint256.Int) error {
	return withQuantities(ErrInsufficientFees, nil, have, want)
}

func InsufficientBalance(holder common.Address, have, want *uint256.Int) error {
	return withQuantities(ErrInsufficientBalance, &holder, have, want)
}

func InsufficientAllowance(spender common.Address, have, want *uint256.Int) error {
	return withQuantities(ErrInsufficientAllowance, &spender, have, want)
}

// ──────────────────────────────────────────────────
// Classification
// ──────────────────────────────────────────────────

// IsAuthorization reports whether err is a missing-role failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrOnlyOwner) || errors.Is(err, ErrOnlyAdmin)
}

// IsValidation reports whether err rejects malformed input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMinimumSignaturesTooLow) ||
		errors.Is(err, ErrMinimumSignaturesTooHigh) ||
		errors.Is(err, ErrPercentageFeesTooHigh) ||
		errors.Is(err, ErrCannotProposeToZeroAddress) ||
		errors.Is(err, ErrCannotProposeWithZeroValue) ||
		errors.Is(err, ErrCannotAddZeroAddressAsAdmin) ||
		errors.Is(err, ErrCannotRemoveZeroAddress) ||
		errors.Is(err, ErrInvalidSender) ||
		errors.Is(err, ErrInvalidReceiver) ||
		errors.Is(err, ErrInvalidApprover) ||
		errors.Is(err, ErrInvalidSpender) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsStateConflict reports whether err rejects an operation because of a
// proposal's lifecycle state.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrProposalAlreadyExecuted) ||
		errors.Is(err, ErrProposalAlreadyCancelled) ||
		errors.Is(err, ErrProposalAlreadySigned) ||
		errors.Is(err, ErrProposalNotEnoughSignatures)
}

// IsInsufficient reports whether err is an unmet quantity requirement.
func IsInsufficient(err error) bool {
	return errors.Is(err, ErrInsufficientFees) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance)
}
