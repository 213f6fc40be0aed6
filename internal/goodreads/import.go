// Package goodreads imports books from a Goodreads library export CSV into
// the local favorites store.
package goodreads

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookpedia/internal/book"
)

// Favoriter is the slice of the repository the importer needs.
type Favoriter interface {
	MarkAsFavorite(ctx context.Context, b book.Book) error
}

// ImportFile parses a Goodreads library export CSV and marks every valid row
// as a favorite. Invalid rows are skipped with a warning. Returns the number
// of books imported.
func ImportFile(ctx context.Context, path string, repo Favoriter) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return importReader(ctx, file, repo)
}

func importReader(ctx context.Context, r io.Reader, repo Favoriter) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Goodreads wraps ISBN columns as ="0618260307" which trips strict quoting.
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading record", "error", err)
			continue
		}

		b, err := parseBookRecord(record)
		if err != nil {
			slog.Warn("Skipping invalid book record", "error", err)
			continue
		}

		if err := repo.MarkAsFavorite(ctx, b); err != nil {
			return imported, fmt.Errorf("failed to save %q: %w", b.Title, err)
		}
		imported++
	}

	return imported, nil
}

// parseBookRecord maps one Goodreads export row to a domain Book. Goodreads
// rows carry no catalog work id, so the id is derived from the Goodreads
// book id to stay unique within the favorites table.
func parseBookRecord(record []string) (book.Book, error) {
	const minColumns = 14
	if len(record) < minColumns {
		return book.Book{}, fmt.Errorf("record has %d columns, want at least %d", len(record), minColumns)
	}

	bookID, err := strconv.Atoi(record[0])
	if err != nil {
		return book.Book{}, fmt.Errorf("invalid book ID: %w", err)
	}
	title := strings.TrimSpace(record[1])
	if title == "" {
		return book.Book{}, fmt.Errorf("book %d has no title", bookID)
	}

	b := book.Book{
		ID:      fmt.Sprintf("goodreads-%d", bookID),
		Title:   title,
		Authors: parseAuthors(record[2], record[4]),
	}

	if rating, err := strconv.ParseFloat(record[8], 64); err == nil && rating > 0 {
		b.AverageRating = &rating
	}
	if pages, err := strconv.Atoi(record[11]); err == nil && pages > 0 {
		b.NumPages = &pages
	}
	if year := parseYear(record[13], record[12]); year != "" {
		b.FirstPublishYear = year
	}

	return b, nil
}

// parseAuthors combines the primary author with the "Additional Authors"
// column, preserving order.
func parseAuthors(primary, additional string) []string {
	var authors []string
	if a := strings.TrimSpace(primary); a != "" {
		authors = append(authors, a)
	}
	for _, a := range strings.Split(additional, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// parseYear prefers the original publication year and falls back to the
// edition's year. Kept as a string; the export data is not always numeric.
func parseYear(original, published string) string {
	if y := strings.TrimSpace(original); y != "" && y != "0" {
		return y
	}
	if y := strings.TrimSpace(published); y != "" && y != "0" {
		return y
	}
	return ""
}
