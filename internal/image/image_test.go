package image

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colortune/internal/raster"
	httputil "github.com/jmylchreest/colortune/internal/util/http"
)

func gradient(w, h int) *raster.Image {
	img := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, float32(x)/float32(w-1), float32(y)/float32(h-1), 0.5)
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"jpeg", FormatJPEG, false},
		{"JPG", FormatJPEG, false},
		{".jpg", FormatJPEG, false},
		{"png", FormatPNG, false},
		{"tif", FormatTIFF, false},
		{".TIFF", FormatTIFF, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".png", FormatPNG.Extension())
	assert.Equal(t, ".tif", FormatTIFF.Extension())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := gradient(16, 8)

	tests := []struct {
		name      string
		opts      EncodeOptions
		tolerance float64
	}{
		{"png", EncodeOptions{Format: FormatPNG}, 1e-4},
		{"tiff", EncodeOptions{Format: FormatTIFF}, 1e-4},
		{"jpeg", EncodeOptions{Format: FormatJPEG, Quality: 100}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeBytes(src, tt.opts)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			require.True(t, got.SameSize(src))
			assert.LessOrEqual(t, got.MaxDiff(src), tt.tolerance)
		})
	}
}

func TestEncodeRejectsBadQuality(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, gradient(4, 4), EncodeOptions{Format: FormatJPEG, Quality: 101})
	assert.ErrorContains(t, err, "quality")

	err = Encode(&buf, gradient(4, 4), EncodeOptions{Format: "gif"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestJPEGQualityAffectsSize(t *testing.T) {
	src := gradient(64, 64)
	low, err := EncodeBytes(src, EncodeOptions{Format: FormatJPEG, Quality: 10})
	require.NoError(t, err)
	high, err := EncodeBytes(src, EncodeOptions{Format: FormatJPEG, Quality: 100})
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	data, err := EncodeBytes(gradient(10, 6), EncodeOptions{Format: FormatPNG})
	require.NoError(t, err)
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	img, err := NewFileLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Width)
	assert.Equal(t, 6, img.Height)

	_, err = NewFileLoader().Load(context.Background(), filepath.Join(dir, "missing.png"))
	assert.ErrorContains(t, err, "not found")

	_, err = NewFileLoader().Load(context.Background(), dir)
	assert.ErrorContains(t, err, "directory")

	_, err = NewFileLoader().Load(context.Background(), "")
	assert.Error(t, err)
}

func TestValidateImagePath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	data, err := EncodeBytes(gradient(4, 4), EncodeOptions{Format: FormatPNG})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, data, 0o600))
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	assert.NoError(t, ValidateImagePath(good))
	assert.NoError(t, ValidateImagePath("https://example.com/x.jpg"))
	assert.ErrorContains(t, ValidateImagePath(bad), "unsupported")
	assert.Error(t, ValidateImagePath(""))
	assert.Error(t, ValidateImagePath(dir))
}

func TestScanDirectoryForImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt", "c.tiff"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := ScanDirectoryForImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "c.tiff"),
	}, files)

	_, err = ScanDirectoryForImages(t.TempDir())
	assert.Error(t, err)
}

func TestSmartLoaderURL(t *testing.T) {
	data, err := EncodeBytes(gradient(8, 8), EncodeOptions{Format: FormatPNG})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.png" {
			http.NotFound(w, r)
			return
		}
		assert.Contains(t, r.Header.Get("User-Agent"), "colortune/")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	loader := NewSmartLoader(httputil.FetchOptions{})
	img, err := loader.Load(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Width)

	_, err = loader.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "404")
}

type countingFetcher struct {
	data  []byte
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, nil
}

func TestSmartLoaderWithFetcher(t *testing.T) {
	data, err := EncodeBytes(gradient(6, 4), EncodeOptions{Format: FormatPNG})
	require.NoError(t, err)

	f := &countingFetcher{data: data}
	loader := NewSmartLoaderWithFetcher(f)
	img, err := loader.Load(context.Background(), "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, 6, img.Width)
	assert.Equal(t, 1, f.calls)
}
