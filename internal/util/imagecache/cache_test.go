package imagecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colortune/internal/storage"
	httputil "github.com/jmylchreest/colortune/internal/util/http"
)

func TestKey(t *testing.T) {
	tests := []struct {
		url     string
		wantExt string
	}{
		{"https://example.com/photo.JPG", ".jpg"},
		{"https://example.com/photo.png?w=800", ".png"},
		{"https://example.com/images/", ".img"},
		{"https://example.com/archive.tar.longext", ".img"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			key := Key(tt.url)
			assert.True(t, strings.HasPrefix(key, Prefix+"/"))
			assert.True(t, strings.HasSuffix(key, tt.wantExt), key)
			assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, Prefix+"/"), tt.wantExt), 32)
		})
	}
	assert.NotEqual(t, Key("https://a/x.png"), Key("https://b/x.png"))
}

func TestFetchCachesDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cache := New(store, httputil.FetchOptions{})

	for range 3 {
		data, err := cache.Fetch(context.Background(), srv.URL+"/photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	}
	assert.Equal(t, int32(1), hits.Load())

	stored, err := store.Load(context.Background(), Key(srv.URL+"/photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), stored)

	_, err = cache.Fetch(context.Background(), srv.URL+"/missing.jpg")
	assert.ErrorContains(t, err, "failed to download image")
	_, err = store.Load(context.Background(), Key(srv.URL+"/missing.jpg"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
