package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const statusBucket = "statuses"

// Cache stores resolved registration statuses in BoltDB
type Cache struct {
	db *bbolt.DB
}

// cacheEntry is the stored form of a status
type cacheEntry struct {
	Status    string    `json:"status"`
	FetchedAt time.Time `json:"fetched_at"`
}

// OpenCache opens or creates the status cache at path
func OpenCache(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statusBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached status for number, if any
func (c *Cache) Get(number string) (string, bool, error) {
	var (
		entry cacheEntry
		found bool
	)
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(statusBucket)).Get([]byte(normalizeNumber(number)))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false, fmt.Errorf("reading status of %s: %w", number, err)
	}
	return entry.Status, found, nil
}

// Put stores the status for number
func (c *Cache) Put(number, status string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(cacheEntry{Status: status, FetchedAt: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("marshaling status: %w", err)
		}
		return tx.Bucket([]byte(statusBucket)).Put([]byte(normalizeNumber(number)), data)
	})
}

// Close closes the database
func (c *Cache) Close() error {
	return c.db.Close()
}
