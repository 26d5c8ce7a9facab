package escrow

import "github.com/shopspring/decimal"

// EventType names a state change notification.
type EventType string

const (
	// EventFunded is emitted when the pool receives a deposit.
	EventFunded EventType = "funded"
	// EventPackageCreated is emitted when funds are committed to a new package.
	EventPackageCreated EventType = "package_created"
	// EventClaimed is emitted when the recipient claims a package.
	EventClaimed EventType = "claimed"
	// EventDisbursed is emitted when the administrator forces a payout.
	EventDisbursed EventType = "disbursed"
	// EventRevoked is emitted when the administrator cancels a package.
	EventRevoked EventType = "revoked"
	// EventRefunded is emitted when package funds return to the administrator.
	EventRefunded EventType = "refunded"
)

// Event is a fire-and-forget notification about one state change.
type Event struct {
	// ID uniquely identifies the notification.
	ID string
	// Type is the kind of state change.
	Type EventType
	// PackageID is set for package events.
	PackageID uint64
	// Actor is the funder, recipient or administrator, depending on Type.
	Actor Identity
	// Asset is the asset moved or committed.
	Asset Asset
	// Amount is the amount moved or committed.
	Amount decimal.Decimal
	// Timestamp is the ledger time of the change.
	Timestamp uint64
}
