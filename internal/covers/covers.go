// Package covers downloads book cover images for exported notes, resizing
// oversized originals so the export stays reasonably small on disk.
package covers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	defaultMaxWidth = 1000
	jpegQuality     = 85
)

// Downloader fetches cover images over HTTP. The zero value is usable and
// carries a 30 second timeout.
type Downloader struct {
	client   *http.Client
	maxWidth int
}

// NewDownloader creates a Downloader with the default HTTP client.
func NewDownloader() *Downloader {
	return &Downloader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxWidth: defaultMaxWidth,
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func (d *Downloader) WithHTTPClient(client *http.Client) *Downloader {
	d.client = client
	return d
}

// Download fetches the image at imageURL and saves it as a JPEG at savePath,
// resizing down to the configured max width if the original is wider.
// Existing files are left alone.
func (d *Downloader) Download(ctx context.Context, imageURL, savePath string) (bool, error) {
	if imageURL == "" {
		return false, nil
	}

	if fileExists(savePath) {
		slog.Debug("Cover already exists, skipping download", "path", savePath)
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, imageURL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return false, fmt.Errorf("failed to decode cover: %w", err)
	}

	maxWidth := d.maxWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return false, err
	}

	if err := imaging.Save(img, savePath, imaging.JPEGQuality(jpegQuality)); err != nil {
		return false, fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", savePath)
	return true, nil
}

// Filename creates a standard cover filename from a title.
// Returns: "Title - cover.jpg"
func Filename(title string) string {
	return sanitizeFilename(title) + " - cover.jpg"
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return name
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
