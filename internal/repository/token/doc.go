// Package token implements the asset transfer capability: per-asset holder
// balances kept in the ledger store, with transfer, balance and mint.
//
// Because balances live in the same store as the escrow records, a transfer
// performed through a ledger.Tx is committed or discarded together with the
// contract state of the same call.
package token
