package driven

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// FavoritesRedisKey is the hash holding favorite URLs, shared by every
	// instance pointed at the same redis database.
	FavoritesRedisKey = "iptv:favorites"

	maxToggleRetries = 10
)

// ErrToggleConflict is returned when concurrent writers keep invalidating a toggle.
var ErrToggleConflict = errors.New("favorite toggle conflicted with concurrent updates")

// FavoriteRedisRepository implements the FavoriteRepository port on a redis hash.
type FavoriteRedisRepository struct {
	c   *goredis.Client
	key string
	now func() time.Time
}

// NewFavoriteRedisRepository creates a repository from a go-redis client.
func NewFavoriteRedisRepository(c *goredis.Client) (*FavoriteRedisRepository, error) {
	if c == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &FavoriteRedisRepository{c: c, key: FavoritesRedisKey, now: time.Now}, nil
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return goredis.NewClient(opts), nil
}

func (r *FavoriteRedisRepository) All(ctx context.Context) (map[string]bool, error) {
	fields, err := r.c.HKeys(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	favorites := make(map[string]bool, len(fields))
	for _, f := range fields {
		favorites[f] = true
	}
	return favorites, nil
}

func (r *FavoriteRedisRepository) IsFavorite(ctx context.Context, url string) (bool, error) {
	return r.c.HExists(ctx, r.key, url).Result()
}

// Toggle flips the flag under optimistic locking: the hash is watched and
// the write is retried if another client changed it in between.
func (r *FavoriteRedisRepository) Toggle(ctx context.Context, url string) (bool, error) {
	if url == "" {
		return false, errors.New("url cannot be empty")
	}

	var now bool
	txf := func(tx *goredis.Tx) error {
		exists, err := tx.HExists(ctx, r.key, url).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if exists {
				pipe.HDel(ctx, r.key, url)
			} else {
				pipe.HSet(ctx, r.key, url, r.now().UTC().Format(time.RFC3339))
			}
			return nil
		})
		if err != nil {
			return err
		}

		now = !exists
		return nil
	}

	for i := 0; i < maxToggleRetries; i++ {
		err := r.c.Watch(ctx, txf, r.key)
		if err == nil {
			return now, nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return false, err
	}

	return false, ErrToggleConflict
}

func (r *FavoriteRedisRepository) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}
