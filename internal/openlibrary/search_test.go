package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchBooksQueryParameters(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"key": "/works/OL45883W", "title": "The Hobbit"}]}`))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithLanguage("fin"),
		WithRateLimiter(testLimiter()),
	)

	res := client.SearchBooks(context.Background(), "the hobbit", 25)
	require.True(t, res.IsOk())

	assert.Equal(t, []string{"the hobbit"}, gotQuery["q"])
	assert.Equal(t, []string{"fin"}, gotQuery["language"])
	assert.Equal(t, []string{"25"}, gotQuery["limit"])
	assert.Equal(t, []string{searchFields}, gotQuery["fields"])

	resp := res.Value()
	assert.Equal(t, 1, resp.NumFound)
	require.Len(t, resp.Docs, 1)
	assert.Equal(t, "/works/OL45883W", resp.Docs[0].Key)
	assert.Equal(t, "The Hobbit", resp.Docs[0].Title)
}

func TestSearchBooksOmitsNonPositiveLimit(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"numFound": 0, "docs": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	res := client.SearchBooks(context.Background(), "dune", 0)
	require.True(t, res.IsOk())

	_, hasLimit := gotQuery["limit"]
	assert.False(t, hasLimit)
}

func TestCoverURL(t *testing.T) {
	client := NewClient(WithCoverBaseURL("https://covers.example.org"))

	// Edition key beats the numeric cover id.
	doc := SearchDoc{CoverEditionKey: "OL7058607M", CoverID: 240727}
	assert.Equal(t, "https://covers.example.org/b/olid/OL7058607M-L.jpg", client.CoverURL(doc))

	doc = SearchDoc{CoverID: 240727}
	assert.Equal(t, "https://covers.example.org/b/id/240727-L.jpg", client.CoverURL(doc))

	assert.Equal(t, "", client.CoverURL(SearchDoc{}))

	assert.Equal(t, "https://covers.example.org/b/id/42-L.jpg", client.CoverURLByID(42))
	assert.Equal(t, "", client.CoverURLByID(0))
}
