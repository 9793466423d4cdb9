package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2, "trace ID should be hex-encoded")
}

func TestTraceIDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		traceID := GetTraceID(SetTraceID(context.Background()))
		assert.False(t, seen[traceID], "trace IDs must not repeat")
		seen[traceID] = true
	}
}

func TestGetTraceIDMissing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", GetTraceID(context.Background()))
}
