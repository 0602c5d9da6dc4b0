package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	bolt "go.etcd.io/bbolt"
)

// ErrCacheMiss is returned by Get when a key has no entry.
var ErrCacheMiss = errors.New("cache entry not found")

// boltOpenTimeout bounds how long Open waits for the file lock.
const boltOpenTimeout = time.Second

// boltEntry is the stored form of one cache value.
type boltEntry struct {
	Value     []byte `json:"value"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// BoltStore keeps history cache entries in a single bbolt bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	path   string
}

var _ contract.CacheStore = &BoltStore{} // Compile-time check

// NewBoltStore opens (or creates) the bbolt file at path. An empty path uses
// the default location in the home directory.
func NewBoltStore(bucket, path string) (*BoltStore, error) {
	if path == "" {
		path = GetBoltFilePath()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache at %q: %w. Ensure no other recon process holds it", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return &BoltStore{db: db, bucket: []byte(bucket), path: path}, nil
}

// Get retrieves a value by key from the store.
func (bs *BoltStore) Get(key string) ([]byte, int, int64, error) {
	var entry boltEntry
	err := bs.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bs.bucket).Get([]byte(key))
		if raw == nil {
			return ErrCacheMiss
		}
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return entry.Value, entry.Version, entry.Timestamp, nil
}

// Set inserts or replaces a key/value pair in the store.
func (bs *BoltStore) Set(key string, value []byte, version int, timestamp int64) error {
	raw, err := json.Marshal(boltEntry{Value: value, Version: version, Timestamp: timestamp})
	if err != nil {
		return err
	}
	return bs.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bs.bucket).Put([]byte(key), raw)
	})
}

// Close closes the bbolt file.
func (bs *BoltStore) Close() error {
	return bs.db.Close()
}

// GetStatus returns status information about the cache store.
func (bs *BoltStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.BoltBackend), Connected: true}
	err := bs.db.View(func(tx *bolt.Tx) error {
		var newest, oldest int64
		err := tx.Bucket(bs.bucket).ForEach(func(_, raw []byte) error {
			var entry boltEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				return err
			}
			if status.TotalEntries == 0 || entry.Timestamp > newest {
				newest = entry.Timestamp
			}
			if status.TotalEntries == 0 || entry.Timestamp < oldest {
				oldest = entry.Timestamp
			}
			status.TotalEntries++
			return nil
		})
		if err != nil {
			return err
		}
		if status.TotalEntries > 0 {
			status.LastEntryTime = time.Unix(newest, 0)
			status.OldestEntryTime = time.Unix(oldest, 0)
		}
		status.TableSizeBytes = tx.Size()
		return nil
	})
	if err != nil {
		return status, fmt.Errorf("failed to read bolt cache: %w", err)
	}
	return status, nil
}

// removeBoltFile deletes the bbolt file; a missing file is not an error.
func removeBoltFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove bolt cache file %s: %w", path, err)
	}
	return nil
}
