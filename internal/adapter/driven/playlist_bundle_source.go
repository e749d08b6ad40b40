package driven

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alorle/iptv-zapper/internal/m3u"
)

// SourceBundle identifies the playlist shipped alongside the binary.
const SourceBundle = "bundle"

var (
	// ErrBundleEmpty is returned when the archive holds no usable entry.
	ErrBundleEmpty = errors.New("bundle contains no playlist")

	zipMagic = []byte("PK\x03\x04")
)

// PlaylistBundleSource implements the PlaylistSource port from a local
// archive used as last-resort fallback. The file may be a zip archive, whose
// first regular entry is used, or a single playlist optionally compressed
// with gzip, bzip2 or xz.
type PlaylistBundleSource struct {
	path string
}

// NewPlaylistBundleSource creates a bundle source reading from path.
func NewPlaylistBundleSource(path string) (*PlaylistBundleSource, error) {
	if path == "" {
		return nil, errors.New("bundle path cannot be empty")
	}
	return &PlaylistBundleSource{path: path}, nil
}

func (s *PlaylistBundleSource) Name() string {
	return SourceBundle
}

// Fetch extracts the playlist document from the bundle.
func (s *PlaylistBundleSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	if bytes.HasPrefix(data, zipMagic) {
		return extractFirstEntry(data)
	}

	return decompressAll(bytes.NewReader(data))
}

// extractFirstEntry returns the decompressed content of the first zip entry
// that is neither a directory nor macOS resource fork metadata.
func extractFirstEntry(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip bundle: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if strings.Contains(f.Name, "__MACOSX") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open bundle entry %s: %w", f.Name, err)
		}
		content, err := decompressAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("bundle entry %s: %w", f.Name, err)
		}
		return content, nil
	}

	return nil, ErrBundleEmpty
}

func decompressAll(r io.Reader) ([]byte, error) {
	dr, closeFn, err := m3u.Decompress(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	content, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress playlist: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrBundleEmpty
	}
	return content, nil
}
