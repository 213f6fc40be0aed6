// Package export writes favorite books out as markdown notes with YAML
// frontmatter, one file per book, suitable for an Obsidian-style vault.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/covers"
)

// Options configures a markdown export run.
type Options struct {
	// OutputDir is the directory notes are written into.
	OutputDir string
	// DownloadCovers fetches each book's cover into OutputDir/attachments.
	DownloadCovers bool
	// Overwrite replaces existing notes instead of skipping them.
	Overwrite bool
}

// Result summarizes an export run.
type Result struct {
	Written int
	Skipped int
	Covers  int
}

// Exporter writes books as markdown notes.
type Exporter struct {
	opts       Options
	downloader *covers.Downloader
}

// NewExporter creates an Exporter. A nil downloader gets the default one.
func NewExporter(opts Options, downloader *covers.Downloader) *Exporter {
	if downloader == nil {
		downloader = covers.NewDownloader()
	}
	return &Exporter{opts: opts, downloader: downloader}
}

// Export writes one note per book into the output directory. Existing notes
// are skipped unless Overwrite is set; cover download failures are logged and
// do not fail the run.
func (e *Exporter) Export(ctx context.Context, books []book.Book) (Result, error) {
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	var res Result
	for _, b := range books {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		coverPath := ""
		if e.opts.DownloadCovers && b.ImageURL != "" {
			filename := covers.Filename(b.Title)
			savePath := filepath.Join(e.opts.OutputDir, "attachments", filename)

			downloaded, err := e.downloader.Download(ctx, b.ImageURL, savePath)
			if err != nil {
				slog.Warn("Failed to download cover", "title", b.Title, "error", err)
			} else {
				coverPath = filepath.Join("attachments", filename)
				if downloaded {
					res.Covers++
				}
			}
		}

		notePath := filepath.Join(e.opts.OutputDir, noteFilename(b.Title))
		if !e.opts.Overwrite {
			if _, err := os.Stat(notePath); err == nil {
				slog.Debug("Note already exists, skipping", "path", notePath)
				res.Skipped++
				continue
			}
		}

		data, err := BuildNote(b, coverPath)
		if err != nil {
			return res, fmt.Errorf("failed to build note for %q: %w", b.Title, err)
		}
		if err := os.WriteFile(notePath, data, 0644); err != nil {
			return res, fmt.Errorf("failed to write note for %q: %w", b.Title, err)
		}
		res.Written++
	}

	return res, nil
}

// BuildNote renders one book as a markdown note. coverPath, when non-empty,
// is the note-relative path to a local cover image.
func BuildNote(b book.Book, coverPath string) ([]byte, error) {
	fm := NewFrontmatter()
	fm.Set("title", b.Title)
	fm.Set("tags", []string{"book"})

	if len(b.Authors) > 0 {
		fm.Set("authors", b.Authors)
	}
	if len(b.Languages) > 0 {
		fm.Set("languages", b.Languages)
	}
	if b.FirstPublishYear != "" {
		fm.Set("first_published", b.FirstPublishYear)
	}
	if b.AverageRating != nil {
		fm.Set("rating", roundRating(*b.AverageRating))
	}
	if b.RatingCount != nil {
		fm.Set("rating_count", *b.RatingCount)
	}
	if b.NumPages != nil {
		fm.Set("pages", *b.NumPages)
	}
	if b.NumEditions > 0 {
		fm.Set("editions", b.NumEditions)
	}

	var body strings.Builder
	body.WriteString("\n# " + b.Title + "\n")

	switch {
	case coverPath != "":
		body.WriteString("\n![[" + coverPath + "]]\n")
	case b.ImageURL != "":
		body.WriteString("\n![cover](" + b.ImageURL + ")\n")
	}

	if b.Description != nil && *b.Description != "" {
		body.WriteString("\n" + strings.TrimSpace(*b.Description) + "\n")
	}

	note := &Note{Frontmatter: fm, Body: body.String()}
	return note.Build()
}

func noteFilename(title string) string {
	name := strings.ReplaceAll(title, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return name + ".md"
}

// roundRating keeps ratings to two decimals so exports stay stable across
// runs even when the source feed jitters in later digits.
func roundRating(rating float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(rating, 'f', 2, 64), 64)
	if err != nil {
		return rating
	}
	return rounded
}
