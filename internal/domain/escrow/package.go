package escrow

import (
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

// Identity is an account that can hold funds or authorize calls.
type Identity string

// Asset identifies a fungible asset held in custody.
type Asset string

// Status is the lifecycle state of a package.
type Status uint32

const (
	// StatusCreated is the initial state: funds are committed and claimable.
	StatusCreated Status = iota
	// StatusClaimed means funds were paid out to the recipient.
	StatusClaimed
	// StatusExpired means the package passed its expiry before settlement.
	StatusExpired
	// StatusCancelled means the administrator revoked the package.
	StatusCancelled
	// StatusRefunded means the amount was returned to the administrator.
	StatusRefunded
)

// statusNames maps every status to its canonical name.
//
//nolint:gochecknoglobals // Read-only lookup table.
var statusNames = map[Status]string{
	StatusCreated:   "created",
	StatusClaimed:   "claimed",
	StatusExpired:   "expired",
	StatusCancelled: "cancelled",
	StatusRefunded:  "refunded",
}

// String returns the lower-case status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("status(%d)", uint32(s))
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}

	return 0, fmt.Errorf("unknown package status %q", name)
}

// CanTransition reports whether the state machine allows moving from s to next.
// Nothing ever returns to Created; Claimed and Refunded are dead ends.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusCreated:
		return next == StatusClaimed || next == StatusExpired || next == StatusCancelled
	case StatusExpired, StatusCancelled:
		return next == StatusRefunded
	default:
		return false
	}
}

// Package is a single escrowed commitment of a fixed amount to one recipient.
type Package struct {
	// ID is the caller-assigned identifier, unique for the contract lifetime.
	ID uint64
	// Recipient is the only identity allowed to claim the package.
	Recipient Identity
	// Amount is the committed amount. It never changes after creation.
	Amount decimal.Decimal
	// Asset is the asset the amount is denominated in.
	Asset Asset
	// Status is the current lifecycle state.
	Status Status
	// CreatedAt is the ledger time the package was created at.
	CreatedAt uint64
	// ExpiresAt is the ledger time after which the package expires, 0 for never.
	ExpiresAt uint64
	// Metadata holds optional free-form attributes.
	Metadata map[string]string
}

// PastExpiry reports whether the package has an expiry and now is beyond it.
func (p *Package) PastExpiry(now uint64) bool {
	return p.ExpiresAt > 0 && now > p.ExpiresAt
}

// Clone returns a deep copy of the package.
func (p *Package) Clone() *Package {
	if p == nil {
		return nil
	}

	cloned := *p
	cloned.Metadata = maps.Clone(p.Metadata)

	return &cloned
}
