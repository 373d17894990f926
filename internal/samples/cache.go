package samples

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
)

// JPEGQuality is the encoding quality of cached samples.
const JPEGQuality = 90

// ErrUnknownScene is returned for an ID with no scene.
var ErrUnknownScene = errors.New("unknown sample scene")

// Cache renders scenes to JPEG files on first use.
type Cache struct {
	dir    string
	logger hclog.Logger
}

// NewCache returns a cache writing into dir.
func NewCache(dir string, logger hclog.Logger) *Cache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cache{dir: dir, logger: logger}
}

// Encode renders s as a JPEG.
func Encode(s Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Render(s), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode sample %s: %w", s.ID, err)
	}
	return buf.Bytes(), nil
}

// Path returns the JPEG for id, rendering it if it is not cached yet.
func (c *Cache) Path(id string) (string, error) {
	s, ok := Find(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}

	path := filepath.Join(c.dir, s.ID+".jpg")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := Encode(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create sample directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sample: %w", err)
	}
	c.logger.Debug("rendered sample", "id", s.ID, "bytes", len(data))
	return path, nil
}

// EnsureAll renders every missing scene and returns their paths in order.
func (c *Cache) EnsureAll() ([]string, error) {
	paths := make([]string, 0, len(scenes))
	for _, s := range scenes {
		p, err := c.Path(s.ID)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
