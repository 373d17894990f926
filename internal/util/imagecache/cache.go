// Package imagecache keeps downloaded source images in storage so repeated
// runs against the same URL fetch it only once.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/jmylchreest/colortune/internal/storage"
	httputil "github.com/jmylchreest/colortune/internal/util/http"
)

// Prefix is the storage prefix of cached downloads.
const Prefix = "sources"

// Cache fetches URLs through a storage.Store.
type Cache struct {
	store storage.Store
	fetch httputil.FetchOptions
}

// New returns a cache backed by store.
func New(store storage.Store, fetch httputil.FetchOptions) *Cache {
	return &Cache{store: store, fetch: fetch}
}

// Key returns the storage key for rawURL: a hash of the URL plus the
// extension of its path, ignoring any query string.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:16])

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	return Prefix + "/" + name + ext
}

// Fetch returns the body of rawURL, downloading and storing it on a miss.
func (c *Cache) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := Key(rawURL)
	data, err := c.store.Load(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	data, err = httputil.Fetch(ctx, rawURL, c.fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if _, err := c.store.Save(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to cache image: %w", err)
	}
	return data, nil
}
