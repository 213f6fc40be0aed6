package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string]result.Result[[]book.Book]
	// delay simulates a slow remote, long enough for a second query to
	// supersede the first.
	delay time.Duration
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string]result.Result[[]book.Book]{}}
}

func (f *fakeSearcher) SearchBooks(ctx context.Context, query string) result.Result[[]book.Book] {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	res, ok := f.results[query]
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result.Err[[]book.Book](result.KindCanceled)
		}
	}
	if !ok {
		return result.Ok([]book.Book{})
	}
	return res
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func newTestPipeline(t *testing.T, repo Searcher) *Pipeline {
	t.Helper()
	p := New(repo, WithDebounce(30*time.Millisecond))
	t.Cleanup(p.Close)
	return p
}

func waitForState(t *testing.T, p *Pipeline, cond func(State) bool) State {
	t.Helper()
	var last State
	require.Eventually(t, func() bool {
		last = p.State()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

func TestRapidTypingSearchesOnce(t *testing.T) {
	repo := newFakeSearcher()
	repo.results["hobbit"] = result.Ok([]book.Book{{ID: "OL45883W", Title: "The Hobbit"}})
	p := newTestPipeline(t, repo)

	p.SetQuery("h")
	p.SetQuery("ho")
	p.SetQuery("hobbit")

	state := waitForState(t, p, func(s State) bool { return len(s.Results) == 1 })
	assert.Equal(t, "The Hobbit", state.Results[0].Title)
	assert.Equal(t, []string{"hobbit"}, repo.calls(), "only the settled query may fire")
}

func TestQueryUpdatesSnapshotImmediately(t *testing.T) {
	p := newTestPipeline(t, newFakeSearcher())

	p.SetQuery("du")
	assert.Equal(t, "du", p.State().Query)
}

func TestShortQueryDoesNotSearch(t *testing.T) {
	repo := newFakeSearcher()
	p := newTestPipeline(t, repo)

	p.SetQuery("a")
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, repo.calls())
	assert.False(t, p.State().Loading)
}

func TestClearingQueryRestoresCachedResults(t *testing.T) {
	repo := newFakeSearcher()
	repo.results["hobbit"] = result.Ok([]book.Book{{ID: "OL45883W", Title: "The Hobbit"}})
	p := newTestPipeline(t, repo)

	p.SetQuery("hobbit")
	waitForState(t, p, func(s State) bool { return len(s.Results) == 1 })

	// Simulate an error wiping the results, then clear the query.
	p.store.Update(func(s State) State {
		s.Results = nil
		return s
	})

	p.SetQuery("")
	state := waitForState(t, p, func(s State) bool { return len(s.Results) == 1 })
	assert.Equal(t, "The Hobbit", state.Results[0].Title)
	assert.Equal(t, []string{"hobbit"}, repo.calls(), "clearing must not hit the network")
}

func TestSupersededSearchIsDiscarded(t *testing.T) {
	repo := newFakeSearcher()
	repo.delay = 200 * time.Millisecond
	repo.results["first"] = result.Ok([]book.Book{{ID: "w1", Title: "First"}})
	repo.results["second"] = result.Ok([]book.Book{{ID: "w2", Title: "Second"}})
	p := newTestPipeline(t, repo)

	p.SetQuery("first")
	// Wait for the first search to actually start before superseding it.
	require.Eventually(t, func() bool { return len(repo.calls()) == 1 }, 2*time.Second, 5*time.Millisecond)
	p.SetQuery("second")

	state := waitForState(t, p, func(s State) bool { return len(s.Results) == 1 })
	assert.Equal(t, "Second", state.Results[0].Title)

	// The first search's outcome must never surface, even after it completes.
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, "Second", p.State().Results[0].Title)
}

func TestSearchErrorSetsKind(t *testing.T) {
	repo := newFakeSearcher()
	repo.results["down"] = result.Err[[]book.Book](result.KindServer)
	p := newTestPipeline(t, repo)

	p.SetQuery("down")
	state := waitForState(t, p, func(s State) bool { return s.Err != nil })
	assert.Equal(t, result.KindServer, *state.Err)
	assert.Empty(t, state.Results)
	assert.False(t, state.Loading)
}

func TestDuplicateQueryDoesNotRefire(t *testing.T) {
	repo := newFakeSearcher()
	repo.results["hobbit"] = result.Ok([]book.Book{{ID: "OL45883W", Title: "The Hobbit"}})
	p := newTestPipeline(t, repo)

	p.SetQuery("hobbit")
	waitForState(t, p, func(s State) bool { return len(s.Results) == 1 })

	p.SetQuery("hobbit")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"hobbit"}, repo.calls())
}

func TestTabsAndFavorites(t *testing.T) {
	p := newTestPipeline(t, newFakeSearcher())

	assert.Equal(t, TabSearch, p.State().SelectedTab)
	p.SelectTab(TabFavorites)
	assert.Equal(t, TabFavorites, p.State().SelectedTab)

	p.SetFavorites([]book.Book{{ID: "w1", Title: "Saved"}})
	require.Len(t, p.State().Favorites, 1)
	assert.Equal(t, "Saved", p.State().Favorites[0].Title)
}
