// Package image loads photographs from disk or URLs and encodes graded
// results for storage and export.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/colortune/internal/raster"
	httputil "github.com/jmylchreest/colortune/internal/util/http"
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path or URL.
	Load(ctx context.Context, path string) (*raster.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads and decodes an image file.
func (l *FileLoader) Load(_ context.Context, path string) (*raster.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return Decode(data)
}

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type directFetcher httputil.FetchOptions

func (f directFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return httputil.Fetch(ctx, url, httputil.FetchOptions(f))
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	fetcher    Fetcher
}

// NewSmartLoader creates a SmartLoader that downloads URLs directly.
func NewSmartLoader(opts httputil.FetchOptions) *SmartLoader {
	return NewSmartLoaderWithFetcher(directFetcher(opts))
}

// NewSmartLoaderWithFetcher creates a SmartLoader that downloads URLs with
// f, for example an imagecache.Cache.
func NewSmartLoaderWithFetcher(f Fetcher) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		fetcher:    f,
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (*raster.Image, error) {
	if IsURL(path) {
		data, err := l.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return Decode(data)
	}
	return l.fileLoader.Load(ctx, path)
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Decode decodes any registered format into a float buffer.
func Decode(data []byte) (*raster.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return raster.FromImage(img), nil
}

// ValidateImagePath checks that path is a URL or a readable file in a
// supported format. Only the header is decoded.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns the file extensions accepted for input.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tif", ".tiff", ".bmp"}
}

func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages returns the image files directly inside dirPath,
// sorted by name. Symlinks are followed; subdirectories are not.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			continue
		}
		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}
	return imageFiles, nil
}
