package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, ok, err := s.Get(ctx, "dir:0340001A")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "dir:0340001A", []byte(`[]`), 0))
	b, ok, err := s.Get(ctx, "dir:0340001A")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), b)

	require.NoError(t, s.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, _ = s.Get(ctx, "short")
	assert.False(t, ok)
}
