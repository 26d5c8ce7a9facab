// Package escrow contains the domain types of the pooled-custody escrow:
// packages and their status machine, identities and assets, amount rules,
// the enumerated error kinds and the notifications emitted on every state
// change.
//
// The package has no behaviour beyond validation helpers; the lifecycle rules
// live in the contract package.
package escrow
