package driven

import "context"

// FavoriteRepository persists the favorite flag of channels, keyed by stream URL.
// Every toggle is written through immediately.
type FavoriteRepository interface {
	// All returns the set of favorite URLs.
	All(ctx context.Context) (map[string]bool, error)

	// IsFavorite reports whether url is marked as favorite.
	IsFavorite(ctx context.Context, url string) (bool, error)

	// Toggle flips the flag for url and returns the new value.
	Toggle(ctx context.Context, url string) (bool, error)

	// Ping checks if the underlying store is reachable.
	Ping(ctx context.Context) error
}
