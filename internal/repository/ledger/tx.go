package ledger

import (
	"context"
	"fmt"
)

// Tx buffers writes on top of a Store so that a unit of work can be applied
// all-or-nothing. Reads see the buffered writes first.
// A Tx is not safe for concurrent use.
type Tx struct {
	// base is the store the buffered writes are committed to.
	base Store
	// pending holds buffered values by key.
	pending map[string][]byte
	// order keeps first-write order so commits are deterministic.
	order []string
}

// Begin starts a new buffered unit of work over base.
func Begin(base Store) *Tx {
	return &Tx{
		base:    base,
		pending: make(map[string][]byte),
	}
}

// Get returns the buffered value for key, falling back to the base store.
func (t *Tx) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := t.pending[key]; ok {
		return cloneBytes(value), nil
	}

	return t.base.Get(ctx, key)
}

// Set buffers a write.
func (t *Tx) Set(_ context.Context, key string, value []byte) error {
	if _, ok := t.pending[key]; !ok {
		t.order = append(t.order, key)
	}

	t.pending[key] = cloneBytes(value)

	return nil
}

// Has reports whether key is buffered or present in the base store.
func (t *Tx) Has(ctx context.Context, key string) (bool, error) {
	if _, ok := t.pending[key]; ok {
		return true, nil
	}

	return t.base.Has(ctx, key)
}

// Pending returns the number of buffered keys.
func (t *Tx) Pending() int {
	return len(t.pending)
}

// Commit applies buffered writes to the base store, atomically when the
// base store supports batches, and empties the buffer.
func (t *Tx) Commit(ctx context.Context) error {
	if len(t.order) == 0 {
		return nil
	}

	writes := make([]Write, 0, len(t.order))
	for _, key := range t.order {
		writes = append(writes, Write{Key: key, Value: t.pending[key]})
	}

	if batch, ok := t.base.(BatchStore); ok {
		if err := batch.SetBatch(ctx, writes); err != nil {
			return fmt.Errorf("commit %d writes: %w", len(writes), err)
		}
	} else {
		for _, w := range writes {
			if err := t.base.Set(ctx, w.Key, w.Value); err != nil {
				return fmt.Errorf("commit %q: %w", w.Key, err)
			}
		}
	}

	t.Discard()

	return nil
}

// Discard drops every buffered write.
func (t *Tx) Discard() {
	t.pending = make(map[string][]byte)
	t.order = nil
}
