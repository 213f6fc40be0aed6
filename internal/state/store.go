// Package state provides a snapshot store for screen state. State is held as
// one immutable value, replaced wholesale on every change; readers always see
// a complete, consistent snapshot and never need a lock of their own.
package state

import (
	"context"
	"sync"
)

// Store coordinates concurrent updates to a snapshot of type S. The zero
// value is not usable; create one with New.
type Store[S any] struct {
	mu       sync.RWMutex
	snapshot S

	subMu sync.Mutex
	subs  map[chan S]struct{}
}

// New creates a Store holding the initial snapshot.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		snapshot: initial,
		subs:     make(map[chan S]struct{}),
	}
}

// Get returns the current snapshot.
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Set replaces the snapshot. Last write wins.
func (s *Store[S]) Set(snapshot S) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	s.publish(snapshot)
}

// Update applies fn to the current snapshot and stores the returned one.
// fn must be pure; it runs under the store's lock.
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	s.snapshot = fn(s.snapshot)
	snapshot := s.snapshot
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot
}

// Subscribe returns a channel that carries the current snapshot immediately
// and every replacement after it. Delivery is latest-wins: a slow subscriber
// skips intermediate snapshots but always ends on the newest. The
// subscription ends when ctx is done.
func (s *Store[S]) Subscribe(ctx context.Context) <-chan S {
	ch := make(chan S, 1)
	ch <- s.Get()

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}()

	return ch
}

func (s *Store[S]) publish(snapshot S) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale pending snapshot, then deliver the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
