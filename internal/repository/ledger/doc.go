// Package ledger implements the durable key-value store the escrow contract
// keeps its records in.
//
// MemoryStore, FileStore and RedisStore satisfy the Store interface. Tx layers
// a write buffer on top of any of them so that one contract call is committed
// all-or-nothing.
package ledger
