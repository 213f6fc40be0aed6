package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/openlibrary"
	"github.com/lepinkainen/bookpedia/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	searchResult  result.Result[openlibrary.SearchResponse]
	detailsResult result.Result[openlibrary.WorkDetails]
	searchCalls   int
	detailsCalls  int
	gotQuery      string
	gotLimit      int
}

func (f *fakeRemote) SearchBooks(ctx context.Context, query string, limit int) result.Result[openlibrary.SearchResponse] {
	f.searchCalls++
	f.gotQuery = query
	f.gotLimit = limit
	return f.searchResult
}

func (f *fakeRemote) GetWorkDetails(ctx context.Context, workID string) result.Result[openlibrary.WorkDetails] {
	f.detailsCalls++
	return f.detailsResult
}

func (f *fakeRemote) CoverURL(doc openlibrary.SearchDoc) string {
	if doc.CoverEditionKey != "" {
		return "https://covers.example.org/b/olid/" + doc.CoverEditionKey + "-L.jpg"
	}
	if doc.CoverID > 0 {
		return fmt.Sprintf("https://covers.example.org/b/id/%d-L.jpg", doc.CoverID)
	}
	return ""
}

func (f *fakeRemote) CoverURLByID(coverID int64) string {
	return fmt.Sprintf("https://covers.example.org/b/id/%d-L.jpg", coverID)
}

type fakeLocal struct {
	books map[string]book.Book
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{books: map[string]book.Book{}}
}

func (f *fakeLocal) Upsert(ctx context.Context, b book.Book) error {
	f.books[b.ID] = b
	return nil
}

func (f *fakeLocal) All(ctx context.Context) ([]book.Book, error) {
	var out []book.Book
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeLocal) ByID(ctx context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeLocal) Delete(ctx context.Context, id string) error {
	delete(f.books, id)
	return nil
}

func (f *fakeLocal) Watch(ctx context.Context) <-chan []book.Book {
	ch := make(chan []book.Book, 1)
	books, _ := f.All(ctx)
	ch <- books
	return ch
}

func TestSearchBooksMapsDocs(t *testing.T) {
	remote := &fakeRemote{
		searchResult: result.Ok(openlibrary.SearchResponse{
			NumFound: 2,
			Docs: []openlibrary.SearchDoc{
				{
					Key:              "/works/OL45883W",
					Title:            "The Hobbit",
					AuthorNames:      []string{"J. R. R. Tolkien"},
					Languages:        []string{"eng"},
					CoverEditionKey:  "OL7058607M",
					FirstPublishYear: 1937,
					RatingsAverage:   4.28,
					RatingsCount:     1234,
					PagesMedian:      310,
					EditionCount:     120,
				},
				{Key: "/works/OL1W", Title: "Sparse"},
			},
		}),
	}
	repo := New(remote, newFakeLocal(), WithSearchLimit(10))

	res := repo.SearchBooks(context.Background(), "hobbit")
	require.True(t, res.IsOk())
	assert.Equal(t, "hobbit", remote.gotQuery)
	assert.Equal(t, 10, remote.gotLimit)

	books := res.Value()
	require.Len(t, books, 2)

	full := books[0]
	assert.Equal(t, "OL45883W", full.ID)
	assert.Equal(t, "https://covers.example.org/b/olid/OL7058607M-L.jpg", full.ImageURL)
	assert.Equal(t, "1937", full.FirstPublishYear)
	require.NotNil(t, full.AverageRating)
	assert.Equal(t, 4.28, *full.AverageRating)
	require.NotNil(t, full.RatingCount)
	assert.Equal(t, 1234, *full.RatingCount)
	require.NotNil(t, full.NumPages)
	assert.Equal(t, 310, *full.NumPages)
	assert.Equal(t, 120, full.NumEditions)

	// Absent numeric fields stay nil, not zero-valued pointers.
	sparse := books[1]
	assert.Equal(t, "OL1W", sparse.ID)
	assert.Equal(t, "", sparse.FirstPublishYear)
	assert.Nil(t, sparse.AverageRating)
	assert.Nil(t, sparse.RatingCount)
	assert.Nil(t, sparse.NumPages)
}

func TestSearchBooksPassesErrorThrough(t *testing.T) {
	remote := &fakeRemote{searchResult: result.Err[openlibrary.SearchResponse](result.KindNoInternet)}
	repo := New(remote, newFakeLocal())

	res := repo.SearchBooks(context.Background(), "hobbit")
	require.True(t, res.IsErr())
	assert.Equal(t, result.KindNoInternet, res.Kind())
}

func TestGetBookDescriptionPrefersLocal(t *testing.T) {
	remote := &fakeRemote{}
	local := newFakeLocal()
	desc := "Saved offline."
	local.books["OL45883W"] = book.Book{ID: "OL45883W", Title: "The Hobbit", Description: &desc}
	repo := New(remote, local)

	res := repo.GetBookDescription(context.Background(), "OL45883W")
	require.True(t, res.IsOk())
	require.NotNil(t, res.Value())
	assert.Equal(t, "Saved offline.", *res.Value())
	assert.Equal(t, 0, remote.detailsCalls, "local hit must not touch the remote")
}

func TestGetBookDescriptionLocalNilWins(t *testing.T) {
	// A favorite row with no description still wins over the catalog.
	remote := &fakeRemote{
		detailsResult: result.Ok(openlibrary.WorkDetails{
			Description: openlibrary.Description{Value: strPtr("Fresh from the catalog.")},
		}),
	}
	local := newFakeLocal()
	local.books["OL45883W"] = book.Book{ID: "OL45883W", Title: "The Hobbit"}
	repo := New(remote, local)

	res := repo.GetBookDescription(context.Background(), "OL45883W")
	require.True(t, res.IsOk())
	assert.Nil(t, res.Value())
	assert.Equal(t, 0, remote.detailsCalls)
}

func TestGetBookDescriptionFallsBackToRemote(t *testing.T) {
	remote := &fakeRemote{
		detailsResult: result.Ok(openlibrary.WorkDetails{
			Title:       "The Hobbit",
			Description: openlibrary.Description{Value: strPtr("A journey there and back.")},
		}),
	}
	repo := New(remote, newFakeLocal())

	res := repo.GetBookDescription(context.Background(), "OL45883W")
	require.True(t, res.IsOk())
	require.NotNil(t, res.Value())
	assert.Equal(t, "A journey there and back.", *res.Value())
	assert.Equal(t, 1, remote.detailsCalls)
}

func TestGetBookDescriptionRemoteError(t *testing.T) {
	remote := &fakeRemote{
		detailsResult: result.Err[openlibrary.WorkDetails](result.KindServer),
	}
	repo := New(remote, newFakeLocal())

	res := repo.GetBookDescription(context.Background(), "OL45883W")
	require.True(t, res.IsErr())
	assert.Equal(t, result.KindServer, res.Kind())
}

func TestDetailsFetchHookIsUsed(t *testing.T) {
	remote := &fakeRemote{
		detailsResult: result.Ok(openlibrary.WorkDetails{Title: "Remote"}),
	}
	hookCalls := 0
	repo := New(remote, newFakeLocal(), WithDetailsFetch(
		func(workID string, fetch func() (openlibrary.WorkDetails, error)) (openlibrary.WorkDetails, error) {
			hookCalls++
			assert.Equal(t, "OL45883W", workID)
			return openlibrary.WorkDetails{Title: "From cache"}, nil
		}))

	res := repo.GetWorkDetails(context.Background(), "OL45883W")
	require.True(t, res.IsOk())
	assert.Equal(t, "From cache", res.Value().Title)
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, 0, remote.detailsCalls)
}

func TestFavoriteRoundTrip(t *testing.T) {
	repo := New(&fakeRemote{}, newFakeLocal())
	ctx := context.Background()
	b := book.Book{ID: "OL45883W", Title: "The Hobbit"}

	fav, err := repo.IsBookFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, repo.MarkAsFavorite(ctx, b))

	fav, err = repo.IsBookFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	all, err := repo.Favorites(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteFromFavorites(ctx, b.ID))

	fav, err = repo.IsBookFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestCoverURLByIDUsesConfiguredRemote(t *testing.T) {
	repo := New(&fakeRemote{}, newFakeLocal())

	assert.Equal(t, "https://covers.example.org/b/id/42-L.jpg", repo.CoverURLByID(42))
}

func TestWorkIDFromKey(t *testing.T) {
	assert.Equal(t, "OL45883W", workIDFromKey("/works/OL45883W"))
	assert.Equal(t, "OL45883W", workIDFromKey("OL45883W"))
	assert.Equal(t, "", workIDFromKey("/works/"))
}

func strPtr(s string) *string { return &s }
