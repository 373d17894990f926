// Package storage persists images and records on the local filesystem under
// generated identifiers.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidKey is returned for empty keys or keys escaping the root.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrNotFound is returned when nothing is stored under a key.
	ErrNotFound = errors.New("storage: not found")
)

// Store saves and loads blobs by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
	Load(ctx context.Context, key string) ([]byte, error)
}

// FileStore is a Store rooted at a directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates basePath if needed and returns a store rooted there.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the root directory.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// NewKey returns a fresh key of the form prefix/<uuid><ext>.
func NewKey(prefix, ext string) string {
	name := uuid.New().String() + ext
	if prefix == "" {
		return name
	}
	return strings.Trim(prefix, "/") + "/" + name
}

// Path returns the file a key maps to.
func (s *FileStore) Path(key string) (string, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// Save writes data under key and returns the cleaned key.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create directory: %w", err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}
	return clean, nil
}

// Load reads the data stored under key.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read file: %w", err)
	}
	return data, nil
}

// SaveJSON stores v as indented JSON.
func SaveJSON(ctx context.Context, s Store, key string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: failed to encode %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}

// LoadJSON decodes the JSON stored under key into v.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("storage: failed to decode %s: %w", key, err)
	}
	return nil
}

// sanitizeKey normalises a key and keeps it inside the root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
