// Package ui provides the interactive terminal UI for browsing, searching
// and favoriting books.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/detail"
	"github.com/lepinkainen/bookpedia/internal/search"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// Repo is the slice of the repository the UI needs: everything the detail
// screen uses plus the live favorites feed.
type Repo interface {
	detail.Repo
	FavoriteBooks(ctx context.Context) <-chan []book.Book
}

type view int

const (
	viewBrowse view = iota
	viewDetail
)

type searchStateMsg search.State
type detailStateMsg detail.State
type favoritesMsg []book.Book

type model struct {
	ctx      context.Context
	repo     Repo
	pipeline *search.Pipeline

	searchCh    <-chan search.State
	favoritesCh <-chan []book.Book

	input textinput.Model
	list  list.Model
	view  view

	holder   *detail.Holder
	holderCh <-chan detail.State
	detail   detail.State

	state     search.State
	favorites map[string]bool
	width     int
	quitting  bool
}

func newModel(ctx context.Context, repo Repo, pipeline *search.Pipeline) *model {
	input := textinput.New()
	input.Placeholder = "Search books..."
	input.Prompt = "> "
	input.Focus()

	delegate := newDelegate()
	l := list.New(nil, delegate, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		ctx:         ctx,
		repo:        repo,
		pipeline:    pipeline,
		searchCh:    pipeline.Subscribe(ctx),
		favoritesCh: repo.FavoriteBooks(ctx),
		input:       input,
		list:        l,
		favorites:   map[string]bool{},
	}
}

func waitForSearch(ch <-chan search.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return searchStateMsg(s)
	}
}

func waitForFavorites(ch <-chan []book.Book) tea.Cmd {
	return func() tea.Msg {
		favorites, ok := <-ch
		if !ok {
			return nil
		}
		return favoritesMsg(favorites)
	}
}

func waitForDetail(ch <-chan detail.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return detailStateMsg(s)
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForSearch(m.searchCh),
		waitForFavorites(m.favoritesCh),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchStateMsg:
		m.state = search.State(msg)
		m.syncList()
		return m, waitForSearch(m.searchCh)

	case favoritesMsg:
		m.pipeline.SetFavorites([]book.Book(msg))
		m.favorites = map[string]bool{}
		for _, b := range msg {
			m.favorites[b.ID] = true
		}
		m.syncList()
		return m, waitForFavorites(m.favoritesCh)

	case detailStateMsg:
		m.detail = detail.State(msg)
		if m.view == viewDetail {
			return m, waitForDetail(m.holderCh)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-8, 5)
		m.list.SetSize(width, height)
		m.input.Width = width - 4
		return m, nil
	}

	return m, m.updateChildren(msg)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == viewDetail {
		switch msg.String() {
		case "esc", "backspace", "q":
			m.closeDetail()
			return m, nil
		case "f", "enter":
			m.holder.ToggleFavorite()
			return m, nil
		case "ctrl+c":
			m.quit()
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.quit()
		return m, tea.Quit
	case "esc":
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.pipeline.SetQuery("")
			return m, nil
		}
		m.quit()
		return m, tea.Quit
	case "tab":
		next := search.TabFavorites
		if m.state.SelectedTab == search.TabFavorites {
			next = search.TabSearch
		}
		m.pipeline.SelectTab(next)
		return m, nil
	case "enter":
		if selected, ok := m.list.SelectedItem().(bookItem); ok {
			m.openDetail(selected.Book)
			return m, waitForDetail(m.holderCh)
		}
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Everything else goes to the search box.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.pipeline.SetQuery(m.input.Value())
	return m, cmd
}

func (m *model) updateChildren(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *model) openDetail(b book.Book) {
	m.holder = detail.New(m.repo, b)
	m.holderCh = m.holder.Subscribe(m.ctx)
	m.detail = m.holder.State()
	m.view = viewDetail
}

func (m *model) closeDetail() {
	if m.holder != nil {
		m.holder.Close()
		m.holder = nil
	}
	m.view = viewBrowse
}

func (m *model) quit() {
	m.quitting = true
	m.closeDetail()
	m.pipeline.Close()
}

// syncList rebuilds the list items for the selected tab.
func (m *model) syncList() {
	var books []book.Book
	if m.state.SelectedTab == search.TabFavorites {
		books = m.state.Favorites
	} else {
		books = m.state.Results
	}

	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{Book: b, favorite: m.favorites[b.ID]}
	}
	m.list.SetItems(items)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.view == viewDetail {
		return m.detailView()
	}
	return m.browseView()
}

func (m *model) browseView() string {
	header := headerStyle.Render("Bookpedia")

	searchTab := inactiveTabStyle.Render("Search")
	favTab := inactiveTabStyle.Render(fmt.Sprintf("Favorites (%d)", len(m.state.Favorites)))
	if m.state.SelectedTab == search.TabFavorites {
		favTab = activeTabStyle.Render(fmt.Sprintf("Favorites (%d)", len(m.state.Favorites)))
	} else {
		searchTab = activeTabStyle.Render("Search")
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Left, searchTab, " ", favTab)

	var status string
	switch {
	case m.state.Loading:
		status = statusStyle.Render("Searching...")
	case m.state.Err != nil:
		status = errorStyle.Render(m.state.Err.Message())
	case m.state.SelectedTab == search.TabFavorites && len(m.state.Favorites) == 0:
		status = statusStyle.Render("No favorites yet")
	case m.state.SelectedTab == search.TabSearch && len(m.state.Results) == 0 && m.state.Query != "":
		status = statusStyle.Render("No results found")
	}

	help := helpStyle.Render("Tab switch | Enter details | Esc clear/quit | Ctrl+C quit")

	sections := []string{header, m.input.View(), tabs, m.list.View()}
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, help)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) detailView() string {
	b := m.detail.Book

	title := b.Title
	if m.detail.IsFavorite {
		title += " " + favoriteMarkStyle.Render("★")
	}

	meta := []string{
		detailMetaStyle.Render(formatAuthors(b.Authors, m.width-4)),
		detailMetaStyle.Render(formatBookMeta(b, m.width-4)),
	}
	if len(b.Languages) > 0 {
		meta = append(meta, detailMetaStyle.Render("Languages: "+strings.Join(b.Languages, ", ")))
	}

	var body string
	switch {
	case m.detail.Loading:
		body = statusStyle.Render("Loading description...")
	case m.detail.Err != nil:
		body = errorStyle.Render(m.detail.Err.Message())
	case b.Description != nil && *b.Description != "":
		body = detailBodyStyle.Render(wrap(*b.Description, m.width-4))
	default:
		body = statusStyle.Render("No description available")
	}

	favHint := "f favorite"
	if m.detail.IsFavorite {
		favHint = "f unfavorite"
	}
	help := helpStyle.Render(favHint + " | Esc back | Ctrl+C quit")

	sections := []string{detailTitleStyle.Render(title)}
	sections = append(sections, meta...)
	sections = append(sections, body, help)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func wrap(text string, width int) string {
	if width <= 0 {
		width = defaultListWidth
	}
	words := strings.Fields(text)
	var lines []string
	var line string
	for _, word := range words {
		if line == "" {
			line = word
			continue
		}
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Run starts the interactive browse UI and blocks until the user quits.
func Run(ctx context.Context, repo Repo, pipeline *search.Pipeline) error {
	m := newModel(ctx, repo, pipeline)
	_, err := runProgram(m)
	return err
}
