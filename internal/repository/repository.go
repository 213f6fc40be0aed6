// Package repository merges the remote OpenLibrary client and the local
// favorites store behind one domain-facing interface. This is the only place
// the two data sources are arbitrated.
package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/openlibrary"
	"github.com/lepinkainen/bookpedia/internal/result"
)

// Remote is the catalog-facing side of the repository.
type Remote interface {
	SearchBooks(ctx context.Context, query string, limit int) result.Result[openlibrary.SearchResponse]
	GetWorkDetails(ctx context.Context, workID string) result.Result[openlibrary.WorkDetails]
	CoverURL(doc openlibrary.SearchDoc) string
	CoverURLByID(coverID int64) string
}

// Local is the favorites-facing side of the repository.
type Local interface {
	Upsert(ctx context.Context, b book.Book) error
	All(ctx context.Context) ([]book.Book, error)
	ByID(ctx context.Context, id string) (*book.Book, error)
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context) <-chan []book.Book
}

// DetailsFetch loads work details, typically through a TTL cache wrapping the
// remote call. A nil DetailsFetch means the repository calls the remote
// directly.
type DetailsFetch func(workID string, fetch func() (openlibrary.WorkDetails, error)) (openlibrary.WorkDetails, error)

// Repository is the single façade over remote and local book data.
type Repository struct {
	remote       Remote
	local        Local
	searchLimit  int
	detailsFetch DetailsFetch
}

// Option configures a Repository.
type Option func(*Repository)

// WithSearchLimit caps the number of results requested per search.
func WithSearchLimit(limit int) Option {
	return func(r *Repository) {
		if limit > 0 {
			r.searchLimit = limit
		}
	}
}

// WithDetailsFetch routes remote work-detail lookups through the given
// function (e.g. a response cache).
func WithDetailsFetch(fetch DetailsFetch) Option {
	return func(r *Repository) {
		r.detailsFetch = fetch
	}
}

// New creates a Repository over the given sources.
func New(remote Remote, local Local, opts ...Option) *Repository {
	r := &Repository{
		remote:      remote,
		local:       local,
		searchLimit: 25,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchBooks runs one catalog search and maps the hits to domain books.
func (r *Repository) SearchBooks(ctx context.Context, query string) result.Result[[]book.Book] {
	res := r.remote.SearchBooks(ctx, query, r.searchLimit)
	return result.Map(res, func(resp openlibrary.SearchResponse) []book.Book {
		books := make([]book.Book, 0, len(resp.Docs))
		for _, doc := range resp.Docs {
			books = append(books, r.bookFromDoc(doc))
		}
		return books
	})
}

// GetBookDescription returns the description for a work. Local-first: when a
// favorite row exists its stored description wins unconditionally, even when
// it is nil, favoring offline availability over freshness. Only otherwise is
// the catalog consulted.
func (r *Repository) GetBookDescription(ctx context.Context, workID string) result.Result[*string] {
	if fav, err := r.local.ByID(ctx, workID); err == nil && fav != nil {
		return result.Ok(fav.Description)
	}

	details, err := r.fetchDetails(ctx, workID)
	if err != nil {
		return result.Err[*string](result.AsKind(err, result.KindUnknown))
	}
	return result.Ok(details.Description.Value)
}

// GetWorkDetails fetches a full work record from the catalog (through the
// details cache when one is configured).
func (r *Repository) GetWorkDetails(ctx context.Context, workID string) result.Result[openlibrary.WorkDetails] {
	details, err := r.fetchDetails(ctx, workID)
	if err != nil {
		return result.Err[openlibrary.WorkDetails](result.AsKind(err, result.KindUnknown))
	}
	return result.Ok(details)
}

func (r *Repository) fetchDetails(ctx context.Context, workID string) (openlibrary.WorkDetails, error) {
	direct := func() (openlibrary.WorkDetails, error) {
		return r.remote.GetWorkDetails(ctx, workID).Unwrap()
	}
	if r.detailsFetch == nil {
		return direct()
	}
	return r.detailsFetch(workID, direct)
}

// CoverURLByID builds a cover image URL from a bare numeric cover id, using
// the configured remote's cover endpoint.
func (r *Repository) CoverURLByID(coverID int64) string {
	return r.remote.CoverURLByID(coverID)
}

// FavoriteBooks returns the live favorites stream; it emits immediately and
// re-emits whenever the underlying set changes.
func (r *Repository) FavoriteBooks(ctx context.Context) <-chan []book.Book {
	return r.local.Watch(ctx)
}

// Favorites returns the current favorites as a one-shot list.
func (r *Repository) Favorites(ctx context.Context) ([]book.Book, error) {
	return r.local.All(ctx)
}

// IsBookFavorite reports whether the book is favorited. Computed as set
// membership over the full favorites list, mirroring how the favorites tab
// derives its state, rather than a dedicated indexed lookup.
func (r *Repository) IsBookFavorite(ctx context.Context, id string) (bool, error) {
	all, err := r.local.All(ctx)
	if err != nil {
		return false, err
	}
	return book.ContainsID(all, id), nil
}

// MarkAsFavorite persists the book locally. A full disk surfaces as
// result.KindDiskFull through the returned error.
func (r *Repository) MarkAsFavorite(ctx context.Context, b book.Book) error {
	return r.local.Upsert(ctx, b)
}

// DeleteFromFavorites removes the book from the local store. Delete failures
// are not modeled as recoverable.
func (r *Repository) DeleteFromFavorites(ctx context.Context, id string) error {
	return r.local.Delete(ctx, id)
}

// bookFromDoc maps one search document to a domain Book. The id is the last
// path segment of the raw work key; the cover URL prefers the edition key and
// falls back to the numeric cover id.
func (r *Repository) bookFromDoc(doc openlibrary.SearchDoc) book.Book {
	b := book.Book{
		ID:          workIDFromKey(doc.Key),
		Title:       doc.Title,
		ImageURL:    r.remote.CoverURL(doc),
		Authors:     doc.AuthorNames,
		Languages:   doc.Languages,
		NumEditions: doc.EditionCount,
	}

	if doc.FirstPublishYear > 0 {
		b.FirstPublishYear = strconv.Itoa(doc.FirstPublishYear)
	}
	if doc.RatingsAverage > 0 {
		v := doc.RatingsAverage
		b.AverageRating = &v
	}
	if doc.RatingsCount > 0 {
		v := doc.RatingsCount
		b.RatingCount = &v
	}
	if doc.PagesMedian > 0 {
		v := doc.PagesMedian
		b.NumPages = &v
	}

	return b
}

// workIDFromKey extracts "OL45883W" from "/works/OL45883W".
func workIDFromKey(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
