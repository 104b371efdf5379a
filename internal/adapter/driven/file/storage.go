// Package file implements the SecretStorage port as a single encrypted file.
// Every mutation decrypts the whole set, applies the change in memory, and
// atomically replaces the file with a freshly sealed blob.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/secm/internal/codec"
	"github.com/ericfisherdev/secm/internal/crypt"
	"github.com/ericfisherdev/secm/internal/domain/model"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// Compile-time interface satisfaction check.
var _ driven.SecretStorage = (*Storage)(nil)

// Storage is the encrypted flat-file backend. It holds no secrets between calls.
type Storage struct {
	path   string
	keys   driven.KeyProvider
	logger *slog.Logger
}

// NewStorage creates a Storage for path, creating an empty file (and parent
// directory) if none exists.
func NewStorage(path string, keys driven.KeyProvider, logger *slog.Logger) (*Storage, error) {
	s := &Storage{path: path, keys: keys, logger: logger}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Storage) Path() string {
	return s.path
}

// Write inserts or overwrites the named secret.
func (s *Storage) Write(_ context.Context, name, value string) error {
	set, err := s.load("write")
	if err != nil {
		return err
	}
	set[name] = value
	return s.save("write", set)
}

// Read returns the named value, or found=false if absent.
func (s *Storage) Read(_ context.Context, name string) (string, bool, error) {
	set, err := s.load("read")
	if err != nil {
		return "", false, err
	}
	value, ok := set[name]
	return value, ok, nil
}

// Update overwrites an existing secret. Returns model.ErrNotFound if absent.
func (s *Storage) Update(_ context.Context, name, value string) error {
	set, err := s.load("update")
	if err != nil {
		return err
	}
	if !set.Has(name) {
		return notFound("update", name)
	}
	set[name] = value
	return s.save("update", set)
}

// Delete removes an existing secret. Returns model.ErrNotFound if absent.
func (s *Storage) Delete(_ context.Context, name string) error {
	set, err := s.load("delete")
	if err != nil {
		return err
	}
	if !set.Has(name) {
		return notFound("delete", name)
	}
	delete(set, name)
	return s.save("delete", set)
}

// GetAll returns every secret ordered by name.
func (s *Storage) GetAll(_ context.Context) ([]model.Secret, error) {
	set, err := s.load("get all")
	if err != nil {
		return nil, err
	}
	return set.Secrets(), nil
}

// Close is a no-op; the file is not held open between calls.
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return model.NewError(model.KindStorage, "open", fmt.Errorf("stat %s: %w", s.path, err))
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return model.NewError(model.KindStorage, "open", fmt.Errorf("create dir for %s: %w", s.path, err))
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return model.NewError(model.KindStorage, "open", fmt.Errorf("create %s: %w", s.path, err))
	}
	s.logger.Info("secret file created", "path", s.path)
	return f.Close()
}

// load decrypts and parses the file. An empty file is an empty set and never
// touches the key provider or cipher.
func (s *Storage) load(op string) (model.SecretSet, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, model.NewError(model.KindStorage, op, fmt.Errorf("read %s: %w", s.path, err))
	}
	if len(data) == 0 {
		return model.SecretSet{}, nil
	}

	key, err := s.keys.GetKey()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	plaintext, err := crypt.Open(data, key)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", s.path, err)
	}
	defer memguard.WipeBytes(plaintext)

	set, err := codec.Parse(plaintext)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if !crypt.IsSealed(data) {
		s.logger.Warn("secret file uses the legacy zero-IV format; it will be resealed on next write", "path", s.path)
	}
	return set, nil
}

func (s *Storage) save(op string, set model.SecretSet) error {
	plaintext := codec.Serialize(set)
	defer memguard.WipeBytes(plaintext)

	key, err := s.keys.GetKey()
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(key)

	blob, err := crypt.Seal(plaintext, key)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(blob)); err != nil {
		return model.NewError(model.KindStorage, op, fmt.Errorf("write %s: %w", s.path, err))
	}
	if err := os.Chmod(s.path, fileMode); err != nil {
		return model.NewError(model.KindStorage, op, fmt.Errorf("chmod %s: %w", s.path, err))
	}
	s.logger.Debug("secret file written", "path", s.path, "count", len(set))
	return nil
}

func notFound(op, name string) error {
	return model.NewError(model.KindStorage, op, fmt.Errorf("%w: %q", model.ErrNotFound, name))
}
