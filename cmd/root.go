package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookpedia/internal/book"
	"github.com/lepinkainen/bookpedia/internal/cache"
	"github.com/lepinkainen/bookpedia/internal/config"
	"github.com/lepinkainen/bookpedia/internal/covers"
	"github.com/lepinkainen/bookpedia/internal/export"
	"github.com/lepinkainen/bookpedia/internal/favorites"
	"github.com/lepinkainen/bookpedia/internal/goodreads"
	"github.com/lepinkainen/bookpedia/internal/openlibrary"
	"github.com/lepinkainen/bookpedia/internal/repository"
	"github.com/lepinkainen/bookpedia/internal/search"
	"github.com/lepinkainen/bookpedia/internal/ui"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

var runUI = ui.Run

// CLI represents the complete command structure for the bookpedia application
type CLI struct {
	// Global flags
	DBFile string `help:"Path to favorites SQLite database file" default:"./bookpedia.db"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Browse    BrowseCmd    `cmd:"" default:"1" help:"Browse and search books interactively"`
	Search    SearchCmd    `cmd:"" help:"Search the book catalog"`
	Describe  DescribeCmd  `cmd:"" help:"Show the description of a work"`
	Favorites FavoritesCmd `cmd:"" help:"Manage favorite books"`
	Import    ImportCmd    `cmd:"" help:"Import favorites from external sources"`
	Export    ExportCmd    `cmd:"" help:"Export favorites to other formats"`
}

// BrowseCmd starts the interactive terminal UI.
type BrowseCmd struct{}

// SearchCmd runs a one-shot catalog search.
type SearchCmd struct {
	Query []string `arg:"" help:"Search query"`
	Limit int      `help:"Maximum number of results" default:"25"`
}

// DescribeCmd prints a work's description.
type DescribeCmd struct {
	WorkID string `arg:"" help:"Work ID (e.g. OL45883W)"`
}

// FavoritesCmd groups the favorites subcommands.
type FavoritesCmd struct {
	List   FavoritesListCmd   `cmd:"" default:"1" help:"List favorite books"`
	Add    FavoritesAddCmd    `cmd:"" help:"Add a work to favorites"`
	Remove FavoritesRemoveCmd `cmd:"" help:"Remove a work from favorites"`
}

// FavoritesListCmd lists the stored favorites.
type FavoritesListCmd struct{}

// FavoritesAddCmd favorites a work by id.
type FavoritesAddCmd struct {
	WorkID string `arg:"" help:"Work ID to add (e.g. OL45883W)"`
}

// FavoritesRemoveCmd removes a work from favorites.
type FavoritesRemoveCmd struct {
	WorkID string `arg:"" help:"Work ID to remove"`
}

// ImportCmd groups the import subcommands.
type ImportCmd struct {
	Goodreads GoodreadsCmd `cmd:"" help:"Import books from Goodreads library export"`
}

// GoodreadsCmd represents the goodreads import command
type GoodreadsCmd struct {
	Input string `short:"f" help:"Path to Goodreads library export CSV file"`
}

// ExportCmd groups the export subcommands.
type ExportCmd struct {
	Markdown MarkdownCmd `cmd:"" help:"Export favorites as markdown notes"`
}

// MarkdownCmd represents the markdown export command
type MarkdownCmd struct {
	Output    string `short:"o" help:"Output directory for markdown notes"`
	NoCovers  bool   `help:"Skip downloading cover images"`
	Overwrite bool   `help:"Overwrite existing notes"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookpedia"),
		kong.Description("Browse, search and favorite books from the OpenLibrary catalog."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("favorites.dbfile", "./bookpedia.db")

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Export defaults
	viper.SetDefault("export.outputdir", "./markdown/")
	viper.SetDefault("export.downloadcovers", true)

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("favorites.dbfile", cli.DBFile)

	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)

	// Subcommand flags land in viper too, so everything below reads one
	// source. Kong only fills the selected command's branch; zero means the
	// flag was never parsed.
	if cli.Search.Limit > 0 {
		viper.Set("search.limit", cli.Search.Limit)
	}

	// Re-read so the config globals pick up the flag overrides.
	config.InitConfig()
}

func initLogging() {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// buildRepository wires the OpenLibrary client, the favorites store and the
// works cache into one repository. The returned cleanup closes the store.
func buildRepository() (*repository.Repository, func(), error) {
	store, err := favorites.Open(viper.GetString("favorites.dbfile"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open favorites database: %w", err)
	}

	client := openlibrary.NewClient(
		openlibrary.WithTimeout(config.RequestTimeout),
		openlibrary.WithLanguage(config.SearchLanguage),
	)

	repo := repository.New(client, store,
		repository.WithSearchLimit(config.SearchLimit),
		repository.WithDetailsFetch(cachedDetailsFetch),
	)

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close favorites database", "error", err)
		}
	}
	return repo, cleanup, nil
}

// cachedDetailsFetch routes work-detail lookups through the works cache.
func cachedDetailsFetch(workID string, fetch func() (openlibrary.WorkDetails, error)) (openlibrary.WorkDetails, error) {
	details, _, err := cache.GetOrFetch("works_cache", workID, fetch)
	return details, err
}

// Run methods for each command

func (b *BrowseCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := search.New(repo,
		search.WithDebounce(config.SearchDebounce),
		search.WithMinQueryLength(config.MinQueryLength),
	)

	return runUI(ctx, repo, pipeline)
}

func (s *SearchCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	query := strings.Join(s.Query, " ")
	books, err := repo.SearchBooks(context.Background(), query).Unwrap()
	if err != nil {
		return err
	}

	if len(books) == 0 {
		fmt.Println("No results found")
		return nil
	}
	for _, b := range books {
		printBookLine(b)
	}
	return nil
}

func (d *DescribeCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	desc, err := repo.GetBookDescription(context.Background(), d.WorkID).Unwrap()
	if err != nil {
		return err
	}
	if desc == nil || *desc == "" {
		fmt.Println("No description available")
		return nil
	}
	fmt.Println(strings.TrimSpace(*desc))
	return nil
}

func (f *FavoritesListCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	books, err := repo.Favorites(context.Background())
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No favorites yet")
		return nil
	}
	for _, b := range books {
		printBookLine(b)
	}
	return nil
}

func (f *FavoritesAddCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	details, err := repo.GetWorkDetails(ctx, f.WorkID).Unwrap()
	if err != nil {
		return fmt.Errorf("failed to fetch work %s: %w", f.WorkID, err)
	}

	b := book.Book{
		ID:          f.WorkID,
		Title:       details.Title,
		Description: details.Description.Value,
	}
	if len(details.Covers) > 0 {
		b.ImageURL = repo.CoverURLByID(details.Covers[0])
	}

	if err := repo.MarkAsFavorite(ctx, b); err != nil {
		return err
	}
	slog.Info("Added to favorites", "id", f.WorkID, "title", b.Title)
	return nil
}

func (f *FavoritesRemoveCmd) Run() error {
	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := repo.DeleteFromFavorites(context.Background(), f.WorkID); err != nil {
		return err
	}
	slog.Info("Removed from favorites", "id", f.WorkID)
	return nil
}

func (g *GoodreadsCmd) Run() error {
	// Read from config if value not provided via flag
	input := g.Input
	if input == "" {
		input = viper.GetString("goodreads.csvfile")
	}
	if input == "" {
		return fmt.Errorf("input CSV file is required (provide via --input flag or goodreads.csvfile in config)")
	}

	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	imported, err := goodreads.ImportFile(context.Background(), input, repo)
	if err != nil {
		return err
	}
	slog.Info("Import complete", "imported", imported)
	return nil
}

func (m *MarkdownCmd) Run() error {
	output := m.Output
	if output == "" {
		output = viper.GetString("export.outputdir")
	}
	downloadCovers := viper.GetBool("export.downloadcovers") && !m.NoCovers

	repo, cleanup, err := buildRepository()
	if err != nil {
		return err
	}
	defer cleanup()

	books, err := repo.Favorites(context.Background())
	if err != nil {
		return err
	}

	exporter := export.NewExporter(export.Options{
		OutputDir:      output,
		DownloadCovers: downloadCovers,
		Overwrite:      m.Overwrite,
	}, covers.NewDownloader())

	res, err := exporter.Export(context.Background(), books)
	if err != nil {
		return err
	}
	slog.Info("Export complete", "written", res.Written, "skipped", res.Skipped, "covers", res.Covers)
	return nil
}

func printBookLine(b book.Book) {
	line := fmt.Sprintf("%-12s %s", b.ID, b.Title)
	if len(b.Authors) > 0 {
		line += " by " + strings.Join(b.Authors, ", ")
	}
	if b.FirstPublishYear != "" {
		line += fmt.Sprintf(" (%s)", b.FirstPublishYear)
	}
	fmt.Println(line)
}
