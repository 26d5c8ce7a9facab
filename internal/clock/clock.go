// Package clock provides the ledger time sources used by the escrow contract.
package clock

import (
	"sync/atomic"
	"time"
)

// System reads ledger time from the wall clock as Unix seconds.
type System struct{}

// Now returns the current Unix time in seconds.
func (System) Now() uint64 {
	return uint64(time.Now().Unix()) //nolint:gosec // Wall clock is after 1970.
}

// Manual is a settable ledger clock for tests and simulations.
type Manual struct {
	// now holds the current ledger time.
	now atomic.Uint64
}

// NewManual creates a clock set to start.
func NewManual(start uint64) *Manual {
	m := new(Manual)
	m.now.Store(start)

	return m
}

// Now returns the current ledger time.
func (m *Manual) Now() uint64 {
	return m.now.Load()
}

// Set moves the clock to t.
func (m *Manual) Set(t uint64) {
	m.now.Store(t)
}

// Advance moves the clock forward by d seconds and returns the new time.
func (m *Manual) Advance(d uint64) uint64 {
	return m.now.Add(d)
}
