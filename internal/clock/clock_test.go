package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestManual covers Set and Advance.
func TestManual(t *testing.T) {
	t.Parallel()

	c := NewManual(1000)
	require.Equal(t, uint64(1000), c.Now())
	require.Equal(t, uint64(1101), c.Advance(101))

	c.Set(5)
	require.Equal(t, uint64(5), c.Now())
}

// TestSystem returns wall-clock seconds.
func TestSystem(t *testing.T) {
	t.Parallel()

	now := uint64(time.Now().Unix())
	require.InDelta(t, now, System{}.Now(), 2)
}
