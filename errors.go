package feeledger

import (
	"errors"
	"fmt"

	"github.com/xraph/feeledger/errs"
)

// Sentinel errors re-exported from the errs package so callers only
// need to import feeledger.
var (
	// Authorization
	ErrOnlyOwner = errs.ErrOnlyOwner
	ErrOnlyAdmin = errs.ErrOnlyAdmin

	// Validation
	ErrMinimumSignaturesTooLow     = errs.ErrMinimumSignaturesTooLow
	ErrMinimumSignaturesTooHigh    = errs.ErrMinimumSignaturesTooHigh
	ErrPercentageFeesTooHigh       = errs.ErrPercentageFeesTooHigh
	ErrCannotProposeToZeroAddress  = errs.ErrCannotProposeToZeroAddress
	ErrCannotProposeWithZeroValue  = errs.ErrCannotProposeWithZeroValue
	ErrCannotAddZeroAddressAsAdmin = errs.ErrCannotAddZeroAddressAsAdmin
	ErrCannotRemoveZeroAddress     = errs.ErrCannotRemoveZeroAddress
	ErrInvalidSender               = errs.ErrInvalidSender
	ErrInvalidReceiver             = errs.ErrInvalidReceiver
	ErrInvalidApprover             = errs.ErrInvalidApprover
	ErrInvalidSpender              = errs.ErrInvalidSpender
	ErrInvalidConfig               = errs.ErrInvalidConfig

	// Lookup
	ErrProposalNotFound = errs.ErrProposalNotFound
	ErrNotFound         = errs.ErrNotFound

	// Proposal state
	ErrProposalAlreadyExecuted     = errs.ErrProposalAlreadyExecuted
	ErrProposalAlreadyCancelled    = errs.ErrProposalAlreadyCancelled
	ErrProposalAlreadySigned       = errs.ErrProposalAlreadySigned
	ErrProposalNotEnoughSignatures = errs.ErrProposalNotEnoughSignatures

	// Resources
	ErrInsufficientFees      = errs.ErrInsufficientFees
	ErrInsufficientBalance   = errs.ErrInsufficientBalance
	ErrInsufficientAllowance = errs.ErrInsufficientAllowance
	ErrSupplyOverflow        = errs.ErrSupplyOverflow

	// Store and lifecycle
	ErrStoreClosed    = errs.ErrStoreClosed
	ErrAlreadyStarted = errs.ErrAlreadyStarted
	ErrJournalGap     = errors.New("feeledger: journal does not continue the snapshot")
)

// Error is the typed failure returned by every rejected operation.
type Error = errs.Error

// ValidationError represents a config validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("feeledger: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "feeledger: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("feeledger: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// IsAuthorization reports an OnlyOwner or OnlyAdmin rejection.
func IsAuthorization(err error) bool { return errs.IsAuthorization(err) }

// IsValidation reports a rejected argument.
func IsValidation(err error) bool { return errs.IsValidation(err) }

// IsStateConflict reports a proposal in the wrong lifecycle state.
func IsStateConflict(err error) bool { return errs.IsStateConflict(err) }

// IsInsufficient reports a balance, allowance or pool shortfall.
func IsInsufficient(err error) bool { return errs.IsInsufficient(err) }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrProposalNotFound)
}
