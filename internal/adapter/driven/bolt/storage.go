// Package bolt implements the SecretStorage port on an embedded bbolt
// key/value file. Each secret is one key in the "secrets" bucket.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ericfisherdev/secm/internal/domain/model"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

var bucketSecrets = []byte("secrets")

// Compile-time interface satisfaction check.
var _ driven.SecretStorage = (*Storage)(nil)

// Storage is the bbolt backend. bbolt holds an exclusive file lock, so a
// second process opening the same file fails after the open timeout instead
// of corrupting it.
type Storage struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path and ensures the bucket exists.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, model.NewError(model.KindStorage, "open", fmt.Errorf("create dir for %s: %w", path, err))
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, model.NewError(model.KindStorage, "open", fmt.Errorf("open %s: %w", path, err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSecrets)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, model.NewError(model.KindStorage, "open", fmt.Errorf("create bucket: %w", err))
	}

	return &Storage{db: db}, nil
}

// Write inserts or overwrites the named secret.
func (s *Storage) Write(_ context.Context, name, value string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSecrets).Put([]byte(name), []byte(value))
	})
	if err != nil {
		return model.NewError(model.KindStorage, "write", fmt.Errorf("write secret %q: %w", name, err))
	}
	return nil
}

// Read returns the named value, or found=false if absent.
func (s *Storage) Read(_ context.Context, name string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Bytes returned by Get are only valid inside the transaction.
		if v := tx.Bucket(bucketSecrets).Get([]byte(name)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, model.NewError(model.KindStorage, "read", fmt.Errorf("read secret %q: %w", name, err))
	}
	return value, found, nil
}

// Update overwrites an existing secret. Returns model.ErrNotFound if absent.
func (s *Storage) Update(_ context.Context, name, value string) error {
	return s.mutateExisting("update", name, func(b *bbolt.Bucket) error {
		return b.Put([]byte(name), []byte(value))
	})
}

// Delete removes an existing secret. Returns model.ErrNotFound if absent.
func (s *Storage) Delete(_ context.Context, name string) error {
	return s.mutateExisting("delete", name, func(b *bbolt.Bucket) error {
		return b.Delete([]byte(name))
	})
}

// GetAll returns every secret. bbolt iterates keys in byte order, which is
// the same order as sorting the names.
func (s *Storage) GetAll(_ context.Context) ([]model.Secret, error) {
	secrets := []model.Secret{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSecrets).ForEach(func(k, v []byte) error {
			secrets = append(secrets, model.Secret{Name: string(k), Value: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, model.NewError(model.KindStorage, "get all", fmt.Errorf("list secrets: %w", err))
	}
	return secrets, nil
}

// Close releases the file lock.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) mutateExisting(op, name string, fn func(b *bbolt.Bucket) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSecrets)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", model.ErrNotFound, name)
		}
		return fn(b)
	})
	if err != nil {
		return model.NewError(model.KindStorage, op, err)
	}
	return nil
}
