// Package buffer keeps directory writes in a local BoltDB file while postgres is unreachable.
// Items drain in priority order, oldest first within a priority.
package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "buffer"

// Store is the BoltDB-backed queue.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// Open creates the file and its bucket if needed.
func Open(path, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create buffer dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

// Enqueue persists an item. Missing ids, priorities and timestamps are filled in.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize(s.now())
	item.key = itemKey(item)

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(item.key, payload)
	})
}

// GetBatch returns up to limit items in drain order without removing them.
func (s *Store) GetBatch(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.key = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Remove deletes an item. Items not read through GetBatch are looked up by id.
func (s *Store) Remove(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(item.key) > 0 {
			return b.Delete(item.key)
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var stored Item
			if err := json.Unmarshal(v, &stored); err == nil && stored.ID == item.ID {
				return c.Delete()
			}
		}
		return nil
	})
}

// Requeue moves an item to the back of its priority.
func (s *Store) Requeue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	oldKey := item.key
	item.Timestamp = s.now()
	item.key = itemKey(item)

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(oldKey) > 0 {
			if err := b.Delete(oldKey); err != nil {
				return err
			}
		}
		return b.Put(item.key, payload)
	})
}

// Size returns the number of buffered items.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup drops items older than the cutoff and returns how many were removed.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; {
			var item Item
			if err := json.Unmarshal(v, &item); err == nil && item.Timestamp.Before(olderThan) {
				seek := append([]byte(nil), k...)
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
				k, v = c.Seek(seek)
				continue
			}
			k, v = c.Next()
		}
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func itemKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID))
}
