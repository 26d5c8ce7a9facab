// Package contract implements the pooled-custody escrow engine.
//
// A Contract is bound to the collaborators of a single call: a ledger store,
// a clock, an authorizer, the asset transfer capability and an event sink.
// It never caches state between calls; every operation reads what it needs
// from the store, validates, writes its new status and accumulator deltas,
// and only then invokes the transfer capability. Callers are expected to run
// operations one at a time and to commit or discard the store writes of a
// failed call as a unit (see the escrow service).
//
// Packages and the per-asset locked-funds accumulator are written only here.
package contract
