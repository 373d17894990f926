package samples

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenes(t *testing.T) {
	all := Scenes()
	require.Len(t, all, 12)

	seen := map[string]bool{}
	for _, s := range all {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
		assert.NotEmpty(t, s.SceneType)
		assert.NotEmpty(t, s.TimeOfDay)
		assert.NotEmpty(t, s.Label)
	}

	s, ok := Find("city_night")
	require.True(t, ok)
	assert.Equal(t, "night", s.TimeOfDay)

	_, ok = Find("nonexistent_scene")
	assert.False(t, ok)

	all[0].ID = "mutated"
	_, ok = Find("street_sunrise")
	assert.True(t, ok, "Scenes returns a copy")
}

func TestRenderDeterministic(t *testing.T) {
	s, _ := Find("ocean_sunset")
	a := Render(s)
	b := Render(s)

	assert.Equal(t, image.Rect(0, 0, Width, Height), a.Bounds())
	assert.Equal(t, a.Pix, b.Pix)

	other, _ := Find("forest_blue_hour")
	assert.NotEqual(t, a.Pix, Render(other).Pix)
}

func TestRenderIsNotFlat(t *testing.T) {
	s, _ := Find("city_night")
	img := Render(s)

	top := img.NRGBAAt(Width/2, 2)
	bottom := img.NRGBAAt(Width/2, Height-3)
	assert.NotEqual(t, top, bottom)
	for _, px := range []image.Point{{0, 0}, {Width - 1, Height - 1}, {Width / 2, Height / 2}} {
		assert.Equal(t, uint8(0xff), img.NRGBAAt(px.X, px.Y).A)
	}
}

func TestWaveRollsColumns(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		img.Pix[img.PixOffset(0, y)] = uint8(y % 256)
	}
	// sin(0 + pi/2) * 5 shifts column 0 down by 5 rows.
	wave(img, 0, 5, 1.5707963267948966)
	assert.Equal(t, uint8(0), img.Pix[img.PixOffset(0, 5)])
	assert.Equal(t, uint8((Height-5)%256), img.Pix[img.PixOffset(0, 0)])
}

func TestCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "samples")
	c := NewCache(dir, nil)

	path, err := c.Path("street_sunrise")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "street_sunrise.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Width, cfg.Width)
	assert.Equal(t, Height, cfg.Height)

	info, err := os.Stat(path)
	require.NoError(t, err)
	again, err := c.Path("street_sunrise")
	require.NoError(t, err)
	info2, err := os.Stat(again)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), info2.ModTime(), "cached file is reused")

	_, err = c.Path("nonexistent_scene")
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestEnsureAll(t *testing.T) {
	c := NewCache(t.TempDir(), nil)
	paths, err := c.EnsureAll()
	require.NoError(t, err)
	assert.Len(t, paths, 12)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}
