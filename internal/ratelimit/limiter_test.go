package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitAllowsWithinRate(t *testing.T) {
	l := New("test", 100)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx))
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New("test", 1)
	// Drain the initial burst so the next Wait must block.
	require.True(t, l.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
}

func TestAllow(t *testing.T) {
	l := New("test", 1)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestName(t *testing.T) {
	assert.Equal(t, "OpenLibrary", New("OpenLibrary", 1).Name())
}
