package image

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/jmylchreest/colortune/internal/raster"
)

// Format is an export encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

const (
	// DefaultJPEGQuality is used for exports when no quality is given.
	DefaultJPEGQuality = 95
	// PreviewJPEGQuality is used for previews and AI payloads.
	PreviewJPEGQuality = 85
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// FormatFromPath infers the export format from a file name.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	default:
		return "." + string(f)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// EncodeOptions controls export encoding.
type EncodeOptions struct {
	Format Format
	// Quality is the JPEG quality in [1, 100]; zero selects the default.
	Quality int
}

// Encode writes img to w. PNG and TIFF are written at 16 bits per channel
// so lossless exports keep the precision of the float pipeline.
func Encode(w io.Writer, img *raster.Image, opts EncodeOptions) error {
	switch opts.Format {
	case FormatJPEG, "":
		quality := opts.Quality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if quality < 1 || quality > 100 {
			return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", quality)
		}
		if err := imaging.Encode(w, img.ToNRGBA(), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case FormatPNG:
		if err := imaging.Encode(w, img.ToNRGBA64(), imaging.PNG); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatTIFF:
		if err := tiff.Encode(w, img.ToNRGBA64(), &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("failed to encode tiff: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format: %q", opts.Format)
	}
	return nil
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img *raster.Image, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePreviewJPEG encodes img at preview quality. The same bytes are sent
// to vision models.
func EncodePreviewJPEG(img *raster.Image) ([]byte, error) {
	return EncodeBytes(img, EncodeOptions{Format: FormatJPEG, Quality: PreviewJPEGQuality})
}
