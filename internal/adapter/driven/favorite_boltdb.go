package driven

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

const (
	favoritesBucket = "favorites"
)

// FavoriteBoltDBRepository implements the FavoriteRepository port using BoltDB.
type FavoriteBoltDBRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewFavoriteBoltDBRepository creates a new BoltDB-backed favorites repository.
// It initializes the required bucket if it doesn't exist.
func NewFavoriteBoltDBRepository(db *bbolt.DB) (*FavoriteBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(favoritesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &FavoriteBoltDBRepository{db: db, now: time.Now}, nil
}

// favoriteDTO is used for JSON serialization.
type favoriteDTO struct {
	AddedAt string `json:"added_at"`
}

// All returns every favorite URL.
func (r *FavoriteBoltDBRepository) All(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	favorites := make(map[string]bool)
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			favorites[string(k)] = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return favorites, nil
}

// IsFavorite reports whether url is stored as favorite.
func (r *FavoriteBoltDBRepository) IsFavorite(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}
		found = bucket.Get([]byte(url)) != nil
		return nil
	})

	return found, err
}

// Toggle flips the favorite flag for url inside a single transaction.
func (r *FavoriteBoltDBRepository) Toggle(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if url == "" {
		return false, errors.New("url cannot be empty")
	}

	var now bool
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}

		key := []byte(url)
		if bucket.Get(key) != nil {
			now = false
			return bucket.Delete(key)
		}

		data, err := json.Marshal(favoriteDTO{AddedAt: r.now().UTC().Format(time.RFC3339)})
		if err != nil {
			return err
		}
		now = true
		return bucket.Put(key, data)
	})
	if err != nil {
		return false, err
	}

	return now, nil
}

// Ping checks that the database is open and readable.
func (r *FavoriteBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(favoritesBucket)) == nil {
			return errors.New("favorites bucket not found")
		}
		return nil
	})
}
