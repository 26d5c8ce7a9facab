package escrow

import (
	"errors"
	"strings"
)

// Kind enumerates the outcomes an escrow operation can fail with.
// Values match the numeric error codes of the on-ledger contract.
type Kind uint32

const (
	// KindNotInitialized means no administrator has been set yet.
	KindNotInitialized Kind = iota + 1
	// KindAlreadyInitialized means the administrator is already set.
	KindAlreadyInitialized
	// KindNotAuthorized means the required identity did not authorize the call.
	KindNotAuthorized
	// KindInvalidAmount means the amount is not strictly positive.
	KindInvalidAmount
	// KindPackageNotFound means no package exists with the given id.
	KindPackageNotFound
	// KindPackageNotActive means the package is no longer in the Created state.
	KindPackageNotActive
	// KindPackageExpired means the package passed its expiry.
	KindPackageExpired
	// KindPackageNotExpired means the package has not reached its expiry.
	KindPackageNotExpired
	// KindInsufficientFunds means the available pool is smaller than the request.
	KindInsufficientFunds
	// KindPackageIDExists means a package with the id was already created.
	KindPackageIDExists
	// KindInvalidState means the requested transition is not allowed.
	KindInvalidState
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindReasons = map[Kind]string{
	KindNotInitialized:     "NOT_INITIALIZED",
	KindAlreadyInitialized: "ALREADY_INITIALIZED",
	KindNotAuthorized:      "NOT_AUTHORIZED",
	KindInvalidAmount:      "INVALID_AMOUNT",
	KindPackageNotFound:    "PACKAGE_NOT_FOUND",
	KindPackageNotActive:   "PACKAGE_NOT_ACTIVE",
	KindPackageExpired:     "PACKAGE_EXPIRED",
	KindPackageNotExpired:  "PACKAGE_NOT_EXPIRED",
	KindInsufficientFunds:  "INSUFFICIENT_FUNDS",
	KindPackageIDExists:    "PACKAGE_ID_EXISTS",
	KindInvalidState:       "INVALID_STATE",
}

// Reason returns the upper-snake-case reason code used on the wire.
func (k Kind) Reason() string {
	if reason, ok := kindReasons[k]; ok {
		return reason
	}

	return "UNKNOWN"
}

// Error is a domain failure of a single kind.
type Error struct {
	kind Kind
	// keepEffects marks failures whose writes must still be committed.
	keepEffects bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "escrow: " + strings.ToLower(strings.ReplaceAll(e.kind.Reason(), "_", " "))
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// KeepsEffects reports whether state written before the failure must persist.
// Only lazy expiry does that: the Expired transition outlives the failed call.
func (e *Error) KeepsEffects() bool {
	return e.keepEffects
}

// Sentinel errors, one per kind. Compare with errors.Is.
var (
	ErrNotInitialized     = &Error{kind: KindNotInitialized}
	ErrAlreadyInitialized = &Error{kind: KindAlreadyInitialized}
	ErrNotAuthorized      = &Error{kind: KindNotAuthorized}
	ErrInvalidAmount      = &Error{kind: KindInvalidAmount}
	ErrPackageNotFound    = &Error{kind: KindPackageNotFound}
	ErrPackageNotActive   = &Error{kind: KindPackageNotActive}
	ErrPackageExpired     = &Error{kind: KindPackageExpired, keepEffects: true}
	ErrPackageNotExpired  = &Error{kind: KindPackageNotExpired}
	ErrInsufficientFunds  = &Error{kind: KindInsufficientFunds}
	ErrPackageIDExists    = &Error{kind: KindPackageIDExists}
	ErrInvalidState       = &Error{kind: KindInvalidState}
)

// ErrorFromReason returns the sentinel for a wire reason code.
func ErrorFromReason(reason string) (*Error, bool) {
	for _, candidate := range []*Error{
		ErrNotInitialized, ErrAlreadyInitialized, ErrNotAuthorized,
		ErrInvalidAmount, ErrPackageNotFound, ErrPackageNotActive,
		ErrPackageExpired, ErrPackageNotExpired, ErrInsufficientFunds,
		ErrPackageIDExists, ErrInvalidState,
	} {
		if candidate.kind.Reason() == reason {
			return candidate, true
		}
	}

	return nil, false
}

// KindOf extracts the kind of a domain error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.kind, true
	}

	return 0, false
}

// KeepsEffects reports whether err asks for its call's writes to be committed.
func KeepsEffects(err error) bool {
	var domainErr *Error

	return errors.As(err, &domainErr) && domainErr.keepEffects
}
