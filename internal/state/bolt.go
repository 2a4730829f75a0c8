package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt keeps each scope in its own top-level bucket.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) a bbolt database at path.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Load(_ context.Context, scope, key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(scope))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			// Values are only valid inside the transaction
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("bbolt load %s/%s: %w", scope, key, err)
	}
	return out, out != nil, nil
}

func (b *Bolt) Save(_ context.Context, scope, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
}

func (b *Bolt) Scopes(_ context.Context) ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	return out, err
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
