package images

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultUserAgent identifies the dashboard to image hosts. Wikimedia
// rejects requests without one.
const DefaultUserAgent = "crossview/0.1 (artwork dashboard; https://github.com/lehigh-university-libraries/crossview)"

// Fetcher retrieves image metadata for artwork previews
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

// NewFetcher creates a new image fetcher
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: DefaultUserAgent,
	}
}

// Meta describes an image without its pixel data
type Meta struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// FetchMeta downloads just enough of the image at url to read its
// dimensions
func (f *Fetcher) FetchMeta(ctx context.Context, url string) (Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to build image request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Meta{}, fmt.Errorf("failed to fetch image: HTTP %d", resp.StatusCode)
	}

	meta, err := decodeMeta(resp.Body)
	if err != nil {
		return Meta{}, err
	}
	meta.URL = url

	slog.Debug("Fetched image metadata", "url", url, "width", meta.Width, "height", meta.Height, "format", meta.Format)

	return meta, nil
}

// FetchMetaFile reads dimensions from a local image file
func (f *Fetcher) FetchMetaFile(path string) (Meta, error) {
	file, err := os.Open(path)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	meta, err := decodeMeta(file)
	if err != nil {
		return Meta{}, err
	}
	meta.URL = path
	return meta, nil
}

func decodeMeta(r io.Reader) (Meta, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Meta{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Fit scales an image of the given size into a preview box: the width is
// fixed to maxWidth and the height capped at maxHeight, shrinking the
// width to keep the aspect ratio. A zero-sized image gets a blank
// placeholder height.
func Fit(meta Meta, maxWidth, maxHeight, placeholder float64) (float64, float64) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return maxWidth, placeholder
	}
	w := maxWidth
	h := w / float64(meta.Width) * float64(meta.Height)
	if h >= maxHeight {
		h = maxHeight
		w = h / float64(meta.Height) * float64(meta.Width)
	}
	return w, h
}
