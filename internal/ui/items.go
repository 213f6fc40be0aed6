package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookpedia/internal/book"
)

type bookItem struct {
	book.Book
	favorite bool
}

func (i bookItem) Title() string       { return i.Book.Title }
func (i bookItem) FilterValue() string { return i.Book.Title }

func (i bookItem) Description() string {
	return formatBookMeta(i.Book, 0)
}

type itemStyles struct {
	normal     lipgloss.Style
	selected   lipgloss.Style
	titleStyle lipgloss.Style
	metaStyle  lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		metaStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 4 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	bi, ok := item.(bookItem)
	if !ok {
		return
	}

	title := bi.Book.Title
	if bi.favorite {
		title += " " + favoriteMarkStyle.Render("★")
	}
	titleLine := d.styles.titleStyle.Render(title)
	authorLine := d.styles.metaStyle.Render(formatAuthors(bi.Book.Authors, m.Width()-4))
	metaLine := d.styles.metaStyle.Render(formatBookMeta(bi.Book, m.Width()-4))

	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, authorLine, metaLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

func formatAuthors(authors []string, availableWidth int) string {
	if len(authors) == 0 {
		return "Unknown author"
	}
	return truncate(strings.Join(authors, ", "), availableWidth)
}

// formatBookMeta creates the metadata line with year, rating, pages, and
// edition count.
func formatBookMeta(b book.Book, availableWidth int) string {
	var parts []string

	if b.FirstPublishYear != "" {
		parts = append(parts, b.FirstPublishYear)
	}
	if b.AverageRating != nil {
		parts = append(parts, fmt.Sprintf("%.1f/5", *b.AverageRating))
	}
	if b.RatingCount != nil && *b.RatingCount > 0 {
		parts = append(parts, formatRatingCount(*b.RatingCount))
	}
	if b.NumPages != nil && *b.NumPages > 0 {
		parts = append(parts, fmt.Sprintf("%dp", *b.NumPages))
	}
	if b.NumEditions > 1 {
		parts = append(parts, fmt.Sprintf("%d editions", b.NumEditions))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}

	metadata := strings.Join(parts, " | ")
	if availableWidth > 0 && len(metadata) > availableWidth {
		metadata = truncate(metadata, availableWidth)
	}
	return metadata
}

// formatRatingCount formats rating count in a compact way
func formatRatingCount(count int) string {
	if count >= 1000 {
		return fmt.Sprintf("%.1fK ratings", float64(count)/1000)
	}
	return fmt.Sprintf("%d ratings", count)
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
