// Package search implements the debounced query-to-results pipeline behind
// the search screen: observe query changes, debounce, cancel any superseded
// search, and fold outcomes into a single state snapshot.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/result"
	"github.com/lepinkainen/bookpedia/internal/state"
)

// Tab indexes for the browse screen.
const (
	TabSearch = iota
	TabFavorites
)

// State is the search screen's immutable snapshot.
type State struct {
	Query       string
	Results     []book.Book
	Favorites   []book.Book
	Loading     bool
	SelectedTab int
	// Err is the data error to display in place of results, nil when the
	// last search settled cleanly. An empty Results with a nil Err is the
	// distinct "no results" state.
	Err *result.Kind
}

// Searcher is the slice of the repository the pipeline needs.
type Searcher interface {
	SearchBooks(ctx context.Context, query string) result.Result[[]book.Book]
}

// Pipeline drives searches from query changes. Every query change updates
// the snapshot immediately; a search fires only after the query has been
// stable for the debounce window, has at least minQuery characters, and any
// previous in-flight search has been cancelled. At most one search is ever
// in flight.
type Pipeline struct {
	store    *state.Store[State]
	repo     Searcher
	debounce time.Duration
	minQuery int

	root       context.Context
	rootCancel context.CancelFunc

	mu        sync.Mutex
	timer     *time.Timer
	lastQuery string
	armed     bool
	inFlight  context.CancelFunc
	// cached holds the last successful result set, restored whenever the
	// query is cleared so the screen never snaps back to an empty list.
	cached []book.Book
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithMinQueryLength overrides the minimum query length that triggers a search.
func WithMinQueryLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minQuery = n
		}
	}
}

// New creates a Pipeline. Close must be called when the owning screen goes
// away; it cancels any outstanding work.
func New(repo Searcher, opts ...Option) *Pipeline {
	root, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		store:      state.New(State{}),
		repo:       repo,
		debounce:   500 * time.Millisecond,
		minQuery:   2,
		root:       root,
		rootCancel: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current snapshot.
func (p *Pipeline) State() State {
	return p.store.Get()
}

// Subscribe returns the snapshot stream; see state.Store.Subscribe.
func (p *Pipeline) Subscribe(ctx context.Context) <-chan State {
	return p.store.Subscribe(ctx)
}

// SetQuery records a query change. The snapshot reflects the keystroke
// immediately; the search decision is deferred by the debounce window.
// Repeated identical values neither fire nor re-arm the timer.
func (p *Pipeline) SetQuery(query string) {
	p.store.Update(func(s State) State {
		s.Query = query
		return s
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.armed && query == p.lastQuery {
		return
	}
	p.lastQuery = query
	p.armed = true

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		p.onDebounced(query)
	})
}

// SelectTab switches the visible tab.
func (p *Pipeline) SelectTab(tab int) {
	p.store.Update(func(s State) State {
		s.SelectedTab = tab
		return s
	})
}

// SetFavorites folds a favorites emission into the snapshot.
func (p *Pipeline) SetFavorites(favorites []book.Book) {
	p.store.Update(func(s State) State {
		s.Favorites = favorites
		return s
	})
}

// Close cancels any in-flight search and stops the debounce timer. The
// pipeline must not be used afterwards.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()
	p.rootCancel()
}

// onDebounced runs once the query has been stable for the debounce window.
func (p *Pipeline) onDebounced(query string) {
	trimmed := strings.TrimSpace(query)

	switch {
	case trimmed == "":
		// Clearing the query restores the last successful results; no
		// network call.
		p.mu.Lock()
		p.cancelInFlightLocked()
		cached := p.cached
		p.mu.Unlock()

		p.store.Update(func(s State) State {
			s.Results = cached
			s.Loading = false
			s.Err = nil
			return s
		})
	case len([]rune(trimmed)) < p.minQuery:
		// Below the minimum query length nothing happens: no search, no
		// cache reset.
	default:
		p.startSearch(trimmed)
	}
}

// startSearch cancels any previous in-flight search and launches a new one.
func (p *Pipeline) startSearch(query string) {
	p.mu.Lock()
	p.cancelInFlightLocked()
	ctx, cancel := context.WithCancel(p.root)
	p.inFlight = cancel
	p.mu.Unlock()

	p.store.Update(func(s State) State {
		s.Loading = true
		s.Err = nil
		return s
	})

	go func() {
		res := p.repo.SearchBooks(ctx, query)

		// A superseded search's outcome is discarded: its context was torn
		// down before it could produce output.
		if ctx.Err() != nil || res.Canceled() {
			return
		}

		res.OnSuccess(func(books []book.Book) {
			p.mu.Lock()
			p.cached = books
			p.mu.Unlock()

			p.store.Update(func(s State) State {
				s.Results = books
				s.Loading = false
				s.Err = nil
				return s
			})
		}).OnError(func(kind result.Kind) {
			p.store.Update(func(s State) State {
				s.Results = nil
				s.Loading = false
				s.Err = &kind
				return s
			})
		})
	}()
}

func (p *Pipeline) cancelInFlightLocked() {
	if p.inFlight != nil {
		p.inFlight()
		p.inFlight = nil
	}
}
