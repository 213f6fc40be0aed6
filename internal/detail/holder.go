// Package detail holds the state for the book detail screen: the selected
// book, its (lazily fetched) description and its favorite status.
package detail

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/result"
	"github.com/lepinkainen/bookpedia/internal/state"
)

// State is the detail screen's immutable snapshot.
type State struct {
	Book       book.Book
	IsFavorite bool
	Loading    bool
	Err        *result.Kind
}

// Repo is the slice of the repository the detail screen needs.
type Repo interface {
	GetBookDescription(ctx context.Context, workID string) result.Result[*string]
	IsBookFavorite(ctx context.Context, id string) (bool, error)
	MarkAsFavorite(ctx context.Context, b book.Book) error
	DeleteFromFavorites(ctx context.Context, id string) error
}

// Holder owns the detail state for one selected book. All mutations go
// through the store's single reduce path; Close tears down outstanding work
// when the screen goes away.
type Holder struct {
	store  *state.Store[State]
	repo   Repo
	ctx    context.Context
	cancel context.CancelFunc

	// statusReady is closed once the initial favorite-status load settles.
	statusReady chan struct{}
}

// New creates a Holder for the given book and starts loading its description
// and favorite status in the background.
func New(repo Repo, b book.Book) *Holder {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Holder{
		store:       state.New(State{Book: b, Loading: b.Description == nil}),
		repo:        repo,
		ctx:         ctx,
		cancel:      cancel,
		statusReady: make(chan struct{}),
	}

	go h.loadFavoriteStatus()
	if b.Description == nil {
		go h.loadDescription()
	}

	return h
}

// State returns the current snapshot.
func (h *Holder) State() State {
	return h.store.Get()
}

// Subscribe returns the snapshot stream; see state.Store.Subscribe.
func (h *Holder) Subscribe(ctx context.Context) <-chan State {
	return h.store.Subscribe(ctx)
}

// ToggleFavorite flips the favorite status. The store call runs
// asynchronously and the state transition goes through the same reduce path
// as every other update.
func (h *Holder) ToggleFavorite() {
	go func() {
		// A toggle fired before the initial status load settles would read a
		// stale IsFavorite and re-save an already-favorited book instead of
		// removing it.
		select {
		case <-h.statusReady:
		case <-h.ctx.Done():
			return
		}

		s := h.store.Get()
		if s.IsFavorite {
			if err := h.repo.DeleteFromFavorites(h.ctx, s.Book.ID); err != nil {
				slog.Error("Failed to remove favorite", "id", s.Book.ID, "error", err)
				return
			}
			h.store.Update(func(s State) State {
				s.IsFavorite = false
				return s
			})
			return
		}

		if err := h.repo.MarkAsFavorite(h.ctx, s.Book); err != nil {
			kind := result.AsKind(err, result.KindLocalUnknown)
			h.store.Update(func(s State) State {
				s.Err = &kind
				return s
			})
			return
		}
		h.store.Update(func(s State) State {
			s.IsFavorite = true
			return s
		})
	}()
}

// Close cancels outstanding work. The holder must not be used afterwards.
func (h *Holder) Close() {
	h.cancel()
}

func (h *Holder) loadFavoriteStatus() {
	defer close(h.statusReady)

	fav, err := h.repo.IsBookFavorite(h.ctx, h.store.Get().Book.ID)
	if err != nil || h.ctx.Err() != nil {
		return
	}
	h.store.Update(func(s State) State {
		s.IsFavorite = fav
		return s
	})
}

func (h *Holder) loadDescription() {
	res := h.repo.GetBookDescription(h.ctx, h.store.Get().Book.ID)
	if h.ctx.Err() != nil || res.Canceled() {
		return
	}

	res.OnSuccess(func(desc *string) {
		h.store.Update(func(s State) State {
			b := s.Book
			b.Description = desc
			s.Book = b
			s.Loading = false
			s.Err = nil
			return s
		})
	}).OnError(func(kind result.Kind) {
		h.store.Update(func(s State) State {
			s.Loading = false
			s.Err = &kind
			return s
		})
	})
}
