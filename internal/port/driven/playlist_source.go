package driven

import "context"

// PlaylistSource supplies raw playlist text.
// This is a driven port implemented by the HTTP and bundled-asset adapters.
type PlaylistSource interface {
	// Fetch returns the whole playlist document.
	Fetch(ctx context.Context) ([]byte, error)

	// Name identifies the source in logs and metrics.
	Name() string
}

// PlaylistCache stores the last successfully fetched playlist document.
type PlaylistCache interface {
	// Valid reports whether a non-empty cached document exists.
	Valid(ctx context.Context) bool

	// Read returns the cached document.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the cached document.
	Write(ctx context.Context, content []byte) error
}
