// Package keyring implements the KeyProvider port on top of the OS credential
// vault (macOS Keychain, Secret Service, Windows Credential Manager).
package keyring

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/awnumar/memguard"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/ericfisherdev/secm/internal/domain/model"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

// Default vault identifiers, shared with earlier releases of the tool.
const (
	DefaultService = "secm"
	DefaultAccount = "secm"
)

// Compile-time interface satisfaction check.
var _ driven.KeyProvider = (*Provider)(nil)

// Provider reads the master key from the vault once and caches it in a
// memguard enclave for the rest of the process lifetime.
type Provider struct {
	service string
	account string
	logger  *slog.Logger

	mu     sync.Mutex
	cached *memguard.Enclave
}

// NewProvider creates a Provider for the given vault entry.
func NewProvider(service, account string, logger *slog.Logger) *Provider {
	return &Provider{service: service, account: account, logger: logger}
}

// EnsureKey stores a new random 256-bit key if the vault has no entry yet.
// An existing entry is never overwritten.
func (p *Provider) EnsureKey() error {
	_, err := gokeyring.Get(p.service, p.account)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gokeyring.ErrNotFound) {
		return unavailable("ensure", err)
	}

	key := make([]byte, driven.MasterKeySize)
	defer memguard.WipeBytes(key)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return model.NewError(model.KindKey, "ensure", fmt.Errorf("generate key: %w", err))
	}

	if err := gokeyring.Set(p.service, p.account, base64.StdEncoding.EncodeToString(key)); err != nil {
		return unavailable("ensure", err)
	}
	p.logger.Info("master key created", "service", p.service, "account", p.account)
	return nil
}

// GetKey returns a copy of the master key. The caller should wipe it after use.
func (p *Provider) GetKey() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached == nil {
		stored, err := gokeyring.Get(p.service, p.account)
		if err != nil {
			return nil, unavailable("get", err)
		}
		key, err := decodeKey(stored)
		if err != nil {
			return nil, model.NewError(model.KindKey, "get", err)
		}
		// NewEnclave wipes key after sealing it.
		p.cached = memguard.NewEnclave(key)
		p.logger.Debug("master key loaded", "service", p.service)
	}

	buf, err := p.cached.Open()
	if err != nil {
		return nil, model.NewError(model.KindKey, "get", fmt.Errorf("open key enclave: %w", err))
	}
	defer buf.Destroy()

	out := make([]byte, buf.Size())
	copy(out, buf.Bytes())
	return out, nil
}

// decodeKey accepts the current base64 encoding and the legacy format, which
// stored 32 printable characters used directly as key bytes.
func decodeKey(stored string) ([]byte, error) {
	if len(stored) == driven.MasterKeySize {
		return []byte(stored), nil
	}
	key, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: decode stored key: %w", model.ErrKeyUnavailable, err)
	}
	if len(key) != driven.MasterKeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("%w: stored key is %d bytes, want %d", model.ErrKeyUnavailable, len(key), driven.MasterKeySize)
	}
	return key, nil
}

func unavailable(op string, err error) error {
	return model.NewError(model.KindKey, op, fmt.Errorf("%w: %w", model.ErrKeyUnavailable, err))
}
