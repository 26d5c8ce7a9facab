package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
)

// TestBuffer_FlushAndDiscard checks events reach the sink only on flush.
func TestBuffer_FlushAndDiscard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	recorder := new(Recorder)
	buffer := new(Buffer)

	buffer.Emit(ctx, domain.Event{Type: domain.EventFunded, Amount: decimal.NewFromInt(5)})
	require.Empty(t, recorder.Events())

	buffer.Flush(ctx, Multi{recorder, Log{}})
	require.Equal(t, []domain.EventType{domain.EventFunded}, recorder.Types())

	buffer.Emit(ctx, domain.Event{Type: domain.EventClaimed})
	buffer.Discard()
	buffer.Flush(ctx, recorder)
	require.Len(t, recorder.Events(), 1)
}
