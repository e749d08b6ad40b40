package m3u

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression identifies the container format of a playlist stream.
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
	CompressionXZ    Compression = "xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Detect sniffs the magic bytes at the start of header.
func Detect(header []byte) Compression {
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		return CompressionGzip
	case len(header) >= 3 && header[0] == 'B' && header[1] == 'Z' && header[2] == 'h':
		return CompressionBzip2
	case len(header) >= len(xzMagic) && string(header[:len(xzMagic)]) == string(xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Decompress wraps r with a decoder matching its magic bytes. Plain text is
// passed through. The returned close function must be called once done.
func Decompress(r io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	br := bufio.NewReader(r)

	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, noop, fmt.Errorf("peeking header: %w", err)
	}

	switch Detect(header) {
	case CompressionGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzr, gzr.Close, nil
	case CompressionBzip2:
		return bzip2.NewReader(br), noop, nil
	case CompressionXZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzr, noop, nil
	default:
		return br, noop, nil
	}
}
