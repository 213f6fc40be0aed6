package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int
}

func TestGetSet(t *testing.T) {
	s := New(counter{N: 1})
	assert.Equal(t, 1, s.Get().N)

	s.Set(counter{N: 5})
	assert.Equal(t, 5, s.Get().N)
}

func TestUpdateReturnsNewSnapshot(t *testing.T) {
	s := New(counter{N: 1})

	got := s.Update(func(c counter) counter {
		c.N++
		return c
	})
	assert.Equal(t, 2, got.N)
	assert.Equal(t, 2, s.Get().N)
}

func TestConcurrentUpdates(t *testing.T) {
	s := New(counter{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(c counter) counter {
				c.N++
				return c
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, s.Get().N)
}

func TestSubscribeEmitsCurrentSnapshotFirst(t *testing.T) {
	s := New(counter{N: 7})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	got := receive(t, ch)
	assert.Equal(t, 7, got.N)
}

func TestSubscribeLatestWins(t *testing.T) {
	s := New(counter{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx)
	_ = receive(t, ch)

	// Publish twice without reading; the pending emission is replaced.
	s.Set(counter{N: 1})
	s.Set(counter{N: 2})

	got := receive(t, ch)
	assert.Equal(t, 2, got.N)
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	s := New(counter{})
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Subscribe(ctx)
	_ = receive(t, ch)
	cancel()

	// Give the unregister goroutine a moment, then verify publishes no longer
	// reach the channel.
	require.Eventually(t, func() bool {
		s.Set(counter{N: 9})
		select {
		case <-ch:
			return false
		default:
			return true
		}
	}, time.Second, 10*time.Millisecond)
}

func receive(t *testing.T, ch <-chan counter) counter {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return counter{}
	}
}
