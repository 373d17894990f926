package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      string
	}{
		{"https", "https://images.example.com/a.jpg", false, ""},
		{"http", "http://images.example.com/a.jpg", false, ""},
		{"empty", "", false, "empty URL"},
		{"ftp", "ftp://example.com/a.jpg", false, "only http and https"},
		{"file", "file:///etc/passwd", false, "only http and https"},
		{"no host", "https:///a.jpg", false, "hostname"},
		{"localhost", "http://localhost:8080/a.jpg", false, "private"},
		{"loopback v4", "http://127.0.0.1/a.jpg", false, "private"},
		{"private v4", "http://192.168.1.10/a.jpg", false, "private"},
		{"private 172", "http://172.20.0.1/a.jpg", false, "private"},
		{"link local", "http://169.254.169.254/latest", false, "private"},
		{"loopback v6", "http://[::1]/a.jpg", false, "private"},
		{"ula v6", "http://[fd12::1]/a.jpg", false, "private"},
		{"public 172", "http://172.32.0.1/a.jpg", false, ""},
		{"private allowed", "http://192.168.1.10/a.jpg", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageURL(tt.url, tt.allowPrivate)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "provider")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	data := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(data, []byte("x"), 0o600))

	assert.NoError(t, ValidateExecutable(exe))
	assert.ErrorContains(t, ValidateExecutable(""), "empty")
	assert.ErrorContains(t, ValidateExecutable(filepath.Join(dir, "missing")), "not found")
	assert.ErrorContains(t, ValidateExecutable(dir), "regular file")
	assert.ErrorContains(t, ValidateExecutable(data), "not executable")
}
