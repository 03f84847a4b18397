package homestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursorDefaultsToZero(t *testing.T) {
	s := newTestStore(t)

	got, err := s.LastSync(context.Background())
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestCursorRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := time.Date(2026, 9, 1, 14, 30, 15, 123456789, time.UTC)
	require.NoError(t, s.SetLastSync(ctx, want))

	got, err := s.LastSync(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(want), "nanosecond precision survives the round trip")
}

func TestCursorOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetLastSync(ctx, first))
	require.NoError(t, s.SetLastSync(ctx, first.Add(time.Hour)))

	got, err := s.LastSync(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(first.Add(time.Hour)))
}

func TestCursorClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetLastSync(ctx, time.Now()))
	require.NoError(t, s.SetLastSync(ctx, time.Time{}))

	got, err := s.LastSync(ctx)
	require.NoError(t, err)
	require.True(t, got.IsZero(), "zero time clears the watermark")
}
