package ledger

import (
	"context"
	"errors"
)

// Store is a durable key-value mapping. Each call is atomic on its own;
// nothing spans calls.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Has(ctx context.Context, key string) (bool, error)
}

// Write is a single buffered key update.
type Write struct {
	Key   string
	Value []byte
}

// BatchStore is implemented by stores that can apply several writes atomically.
type BatchStore interface {
	Store
	SetBatch(ctx context.Context, writes []Write) error
}

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// cloneBytes returns a copy so callers never share buffers with a store.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	return append(make([]byte, 0, len(b)), b...)
}
