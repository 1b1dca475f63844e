package ledger

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var postedBucket = []byte("posted_urls")

// Cache is a local posted-URL set so repeated runs dedupe without a
// sheet round-trip per article. The sheet stays the source of truth;
// the cache is warmed from it on every run.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (or creates) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(postedBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Warm marks every given URL as posted.
func (c *Cache) Warm(urls []string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(postedBucket)
		for _, url := range urls {
			if url == "" {
				continue
			}
			if err := b.Put([]byte(url), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Add marks one URL as posted.
func (c *Cache) Add(url string) error {
	if url == "" {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(postedBucket).Put([]byte(url), []byte{1})
	})
}

// Contains reports whether the URL has been posted before.
func (c *Cache) Contains(url string) bool {
	if url == "" {
		return false
	}

	var found bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(postedBucket).Get([]byte(url)) != nil
		return nil
	})
	return found
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
