package localstorage

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketStorage = []byte("local_storage")

// BoltStorage is the embedded-key-value-store variant: per-key durable
// writes against a single bucket in a go.etcd.io/bbolt file, grounded on
// the bucket-per-collection / json.Marshal-per-value pattern of
// pkg/storage.BoltStore in the cuemby/warren pack repo (collapsed here to
// one bucket, since Storage has no collections — only flat keys).
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (creating if absent) the bbolt file at path and
// ensures the storage bucket exists. This is Load's job per the Storage
// interface's "Load opens the store", but bolt.Open requires the file to
// already be open before any Get/Set, so it happens here too; Load is then
// a cheap confirmation pass.
func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketStorage)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStorage{db: db}, nil
}

// Close closes the underlying bbolt file.
func (s *BoltStorage) Close() error { return s.db.Close() }

// Load confirms the storage bucket exists; bbolt is already open and
// durable by the time NewBoltStorage returns, so there is nothing further
// to recover.
func (s *BoltStorage) Load(ctx context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketStorage) == nil {
			return fmt.Errorf("storage bucket missing")
		}
		return nil
	})
}

// Get returns the JSON-decoded value stored under key, or def if absent.
func (s *BoltStorage) Get(ctx context.Context, key string, def any) (any, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketStorage).Get([]byte(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return def, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal key %q: %w", key, err)
	}
	return out, nil
}

// Set JSON-encodes value and writes it under key in a single durable
// transaction.
func (s *BoltStorage) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStorage).Put([]byte(key), data)
	})
}
