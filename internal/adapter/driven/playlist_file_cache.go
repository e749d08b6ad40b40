package driven

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCacheEmpty is returned when no usable cached playlist exists.
var ErrCacheEmpty = errors.New("playlist cache is empty")

// PlaylistFileCache implements the PlaylistCache port with a single file.
// The cache never expires: a non-empty file is always considered valid.
type PlaylistFileCache struct {
	path string
}

// NewPlaylistFileCache creates a file-backed cache. The parent directory is
// created if it doesn't exist.
func NewPlaylistFileCache(path string) (*PlaylistFileCache, error) {
	if path == "" {
		return nil, errors.New("cache path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &PlaylistFileCache{path: path}, nil
}

// Path returns the location of the cache file.
func (c *PlaylistFileCache) Path() string {
	return c.path
}

// Valid reports whether the cache file exists and is not empty.
func (c *PlaylistFileCache) Valid(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Read returns the cached playlist.
func (c *PlaylistFileCache) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheEmpty
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrCacheEmpty
	}

	return data, nil
}

// Write replaces the cached playlist. The new content is written to a
// temporary file first and renamed into place, so readers never see a
// partial document.
func (c *PlaylistFileCache) Write(ctx context.Context, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return nil
}
