// Package book defines the domain model shared by the remote catalog, the
// local favorites store and the UI.
package book

// Book is an immutable domain entity. It is constructed from a remote search
// document or a local favorite row and replaced wholesale, never mutated in
// place. Pointer fields distinguish "not present in the source catalog" from
// a zero value.
type Book struct {
	// ID is the work identifier, unique within the source catalog
	// (the last path segment of an OpenLibrary work key).
	ID string
	// Title is the work title.
	Title string
	// ImageURL points at the cover image, empty when the catalog has none.
	ImageURL string
	// Authors holds the ordered author names, possibly empty.
	Authors []string
	// Description is the synopsis, nil when unknown.
	Description *string
	// Languages holds the ordered language codes, possibly empty.
	Languages []string
	// FirstPublishYear is kept as a string because the source data is
	// inconsistent and occasionally non-numeric.
	FirstPublishYear string
	// AverageRating is on a 0-5 scale, nil when the catalog has no ratings.
	AverageRating *float64
	// RatingCount is the number of ratings behind AverageRating.
	RatingCount *int
	// NumPages is the median page count across editions.
	NumPages *int
	// NumEditions is the known edition count, 0 when the catalog omits it.
	NumEditions int
}

// ContainsID reports whether books holds a book with the given id.
func ContainsID(books []Book, id string) bool {
	for _, b := range books {
		if b.ID == id {
			return true
		}
	}
	return false
}
