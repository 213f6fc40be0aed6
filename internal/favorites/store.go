// Package favorites persists the user's favorite books in a local SQLite
// database and exposes a live query that re-emits whenever the set changes.
package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/result"
)

// Store is the local favorites database. Open one per process and share it;
// SQLite's own locking governs concurrent access.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	watchMu  sync.Mutex
	watchers map[chan []book.Book]struct{}
}

// Open opens (creating if needed) the favorites database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites database: %w", err)
	}

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to favorites database: %w", err), closeErr)
	}

	if _, err := db.Exec(Schema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create favorites table: %w", err), closeErr)
	}

	return &Store{
		db:       db,
		watchers: make(map[chan []book.Book]struct{}),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert inserts or replaces a favorite keyed by its book id. A storage
// engine failure surfaces as result.KindDiskFull.
func (s *Store) Upsert(ctx context.Context, b book.Book) error {
	authors := encodeList(b.Authors)
	languages := encodeList(b.Languages)

	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO favorite_books
		(id, title, image_url, authors, description, languages, first_publish_year,
		 average_rating, rating_count, num_pages, num_editions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.ImageURL, authors, nullString(b.Description),
		languages, b.FirstPublishYear, nullFloat(b.AverageRating),
		nullInt(b.RatingCount), nullInt(b.NumPages), b.NumEditions)
	s.mu.Unlock()

	if err != nil {
		slog.Error("Failed to persist favorite", "id", b.ID, "error", err)
		return result.KindDiskFull
	}

	s.notify(ctx)
	return nil
}

// All returns every favorite, ordered by title.
func (s *Store) All(ctx context.Context) ([]book.Book, error) {
	s.mu.RLock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, image_url, authors, description, languages,
		       first_publish_year, average_rating, rating_count, num_pages, num_editions
		FROM favorite_books
		ORDER BY title
	`)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []book.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// ByID returns the favorite with the given id, or nil when none exists.
func (s *Store) ByID(ctx context.Context, id string) (*book.Book, error) {
	s.mu.RLock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, image_url, authors, description, languages,
		       first_publish_year, average_rating, rating_count, num_pages, num_editions
		FROM favorite_books
		WHERE id = ?
	`, id)
	s.mu.RUnlock()

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes the favorite with the given id. Deleting an absent id is
// not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorite_books WHERE id = ?`, id)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	s.notify(ctx)
	return nil
}

// Watch returns a channel that carries the current favorites immediately and
// re-emits after every mutation. Emission is latest-wins: a slow reader sees
// the newest set, not every intermediate one. The subscription ends when ctx
// is done.
func (s *Store) Watch(ctx context.Context) <-chan []book.Book {
	ch := make(chan []book.Book, 1)

	books, err := s.All(ctx)
	if err != nil {
		slog.Warn("Failed to load favorites for watcher", "error", err)
	}
	ch <- books

	s.watchMu.Lock()
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		delete(s.watchers, ch)
		s.watchMu.Unlock()
	}()

	return ch
}

// notify re-queries the favorites and pushes the fresh set to every watcher.
func (s *Store) notify(ctx context.Context) {
	s.watchMu.Lock()
	n := len(s.watchers)
	s.watchMu.Unlock()
	if n == 0 {
		return
	}

	books, err := s.All(ctx)
	if err != nil {
		slog.Warn("Failed to refresh favorites for watchers", "error", err)
		return
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- books:
		default:
			// Replace the stale pending emission.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- books:
			default:
			}
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (book.Book, error) {
	var (
		b          book.Book
		authors    string
		languages  string
		desc       sql.NullString
		avgRating  sql.NullFloat64
		ratingCnt  sql.NullInt64
		pageCount  sql.NullInt64
	)

	err := row.Scan(&b.ID, &b.Title, &b.ImageURL, &authors, &desc, &languages,
		&b.FirstPublishYear, &avgRating, &ratingCnt, &pageCount, &b.NumEditions)
	if err != nil {
		return book.Book{}, err
	}

	if err := json.Unmarshal([]byte(authors), &b.Authors); err != nil {
		return book.Book{}, fmt.Errorf("failed to decode authors for %s: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(languages), &b.Languages); err != nil {
		return book.Book{}, fmt.Errorf("failed to decode languages for %s: %w", b.ID, err)
	}

	if desc.Valid {
		b.Description = &desc.String
	}
	if avgRating.Valid {
		b.AverageRating = &avgRating.Float64
	}
	if ratingCnt.Valid {
		v := int(ratingCnt.Int64)
		b.RatingCount = &v
	}
	if pageCount.Valid {
		v := int(pageCount.Int64)
		b.NumPages = &v
	}

	return b, nil
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// encodeList JSON-encodes a list column. Marshaling a string slice cannot
// fail, so the error is discarded.
func encodeList(list []string) string {
	data, _ := json.Marshal(orEmpty(list))
	return string(data)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
