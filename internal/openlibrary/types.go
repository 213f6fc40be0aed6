package openlibrary

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse is the wire shape of GET /search.json.
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

// SearchDoc is one search result record. Absent list fields decode to nil;
// absent numeric fields decode to zero.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	Languages        []string `json:"language"`
	CoverID          int64    `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	FirstPublishYear int      `json:"first_publish_year"`
	RatingsAverage   float64  `json:"ratings_average"`
	RatingsCount     int      `json:"ratings_count"`
	PagesMedian      int      `json:"number_of_pages_median"`
	EditionCount     int      `json:"edition_count"`
}

// WorkDetails is the wire shape of GET /works/{id}.json, reduced to the
// fields Bookpedia uses.
type WorkDetails struct {
	Title       string      `json:"title"`
	Description Description `json:"description"`
	Covers      []int64     `json:"covers"`
}

// Description normalizes the polymorphic description field: the API returns
// either a bare JSON string or an object {"type": ..., "value": string}.
// Value is nil when the work has no description.
type Description struct {
	Value *string
}

// UnmarshalJSON inspects the raw node shape before committing to a layout,
// so the rest of the system only ever sees one optional string.
func (d *Description) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.Value = nil
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		d.Value = &s
		return nil
	case '{':
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		d.Value = &obj.Value
		return nil
	default:
		return fmt.Errorf("unexpected description shape: %s", trimmed)
	}
}

// MarshalJSON round-trips the normalized form as a bare string (or null).
func (d Description) MarshalJSON() ([]byte, error) {
	if d.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*d.Value)
}
