package tenure

import (
	"errors"
	"fmt"

	"github.com/xraph/tenure/access"
	"github.com/xraph/tenure/freeze"
	"github.com/xraph/tenure/royalty"
	"github.com/xraph/tenure/token"
	"github.com/xraph/tenure/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("tenure: not found")
	ErrInvalidInput = errors.New("tenure: invalid input")

	// Token errors
	ErrTokenNotFound  = errors.New("tenure: token not found")
	ErrNotRegistered  = errors.New("tenure: token identity not registered")
	ErrTokenExists    = errors.New("tenure: token already exists")
	ErrInvalidAccount = errors.New("tenure: account identity is nil")
	ErrInvalidAmount  = errors.New("tenure: amount must be positive")

	// Registration errors
	ErrAlreadyRegistered  = errors.New("tenure: token identity already registered")
	ErrRegistrationFrozen = errors.New("tenure: registration is frozen")

	// Mint errors
	ErrAlreadyAirdropped = errors.New("tenure: holder already received this token type")

	// Transfer errors
	ErrInsufficientBalance = errors.New("tenure: insufficient balance")
	ErrNotApproved         = errors.New("tenure: caller is not owner, approved, or operator")
	ErrNonTransferable     = errors.New("tenure: token is non-transferable")
	ErrSelfApproval        = errors.New("tenure: cannot approve own account")

	// Journal errors
	ErrJournalBufferFull = errors.New("tenure: journal buffer full")

	// Store errors
	ErrStoreNotReady   = errors.New("tenure: store not ready")
	ErrStoreClosed     = errors.New("tenure: store is closed")
	ErrMigrationFailed = errors.New("tenure: migration failed")
)

// Sentinels re-exported from the leaf packages, so callers can match
// every failure with errors.Is against this one package.
var (
	ErrUnauthorized  = access.ErrUnauthorized
	ErrPaused        = access.ErrPaused
	ErrAlreadyPaused = access.ErrAlreadyPaused
	ErrNotPaused     = access.ErrNotPaused
	ErrMintersFrozen = access.ErrMintersFrozen
	ErrInvalidMinter = access.ErrInvalidMinter
	ErrAlreadyMinter = access.ErrAlreadyMinter
	ErrNotAMinter    = access.ErrNotAMinter

	ErrFrozen = freeze.ErrFrozen

	ErrInvalidTypeRange = token.ErrInvalidRange
	ErrMaxNotRaised     = token.ErrMaxNotRaised
	ErrCapBelowSupply   = token.ErrCapBelowSupply

	ErrInvalidRoyaltyFee      = royalty.ErrInvalidFee
	ErrInvalidRoyaltyReceiver = royalty.ErrInvalidReceiver
)

// CapExceededError reports a mint that would push supply past its cap.
type CapExceededError struct {
	TokenID   uint64
	Attempted types.Amount
	Cap       types.Amount
}

func (e CapExceededError) Error() string {
	return fmt.Sprintf("tenure: supply cap exceeded for token %d: attempted %d, cap %d",
		e.TokenID, e.Attempted, e.Cap)
}

// TypeRangeError reports a token type outside the collection's valid
// range.
type TypeRangeError struct {
	Type uint64
	Min  uint64
	Max  uint64
}

func (e TypeRangeError) Error() string {
	return fmt.Sprintf("tenure: token type %d outside valid range [%d, %d]", e.Type, e.Min, e.Max)
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tenure: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tenure: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("tenure: %d errors occurred", len(e.Errors))
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

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsAuthorization returns true if the error is an authorization failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotApproved)
}

// IsFrozen returns true if the error reports a frozen attribute.
func IsFrozen(err error) bool {
	return errors.Is(err, ErrFrozen) ||
		errors.Is(err, ErrMintersFrozen) ||
		errors.Is(err, ErrRegistrationFrozen)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrNotRegistered)
}

// IsRange returns true if the error reports a value outside its valid
// range: a bad token type, an unraisable max, or an invalid cap.
func IsRange(err error) bool {
	var tre TypeRangeError
	if errors.As(err, &tre) {
		return true
	}
	var cee CapExceededError
	if errors.As(err, &cee) {
		return true
	}

	return errors.Is(err, ErrInvalidTypeRange) ||
		errors.Is(err, ErrMaxNotRaised) ||
		errors.Is(err, ErrCapBelowSupply)
}
