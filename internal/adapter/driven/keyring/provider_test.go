package keyring

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

const (
	testService = "secm-test"
	testAccount = "secm-test"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(testService, testAccount, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProvider_EnsureKeyIdempotent(t *testing.T) {
	gokeyring.MockInit()

	require.NoError(t, newTestProvider(t).EnsureKey())
	first, err := newTestProvider(t).GetKey()
	require.NoError(t, err)
	assert.Len(t, first, 32)

	require.NoError(t, newTestProvider(t).EnsureKey())
	second, err := newTestProvider(t).GetKey()
	require.NoError(t, err)

	assert.Equal(t, first, second, "second EnsureKey must not overwrite the key")
}

func TestProvider_StoresBase64(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, newTestProvider(t).EnsureKey())

	stored, err := gokeyring.Get(testService, testAccount)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(stored)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestProvider_GetKeyMissing(t *testing.T) {
	gokeyring.MockInit()

	_, err := newTestProvider(t).GetKey()
	require.ErrorIs(t, err, model.ErrKeyUnavailable)
	assert.Equal(t, model.KindKey, model.KindOf(err))
}

func TestProvider_VaultDenied(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("user denied access"))

	err := newTestProvider(t).EnsureKey()
	require.ErrorIs(t, err, model.ErrKeyUnavailable)

	_, err = newTestProvider(t).GetKey()
	require.ErrorIs(t, err, model.ErrKeyUnavailable)
}

func TestProvider_LegacyTextKey(t *testing.T) {
	gokeyring.MockInit()
	legacy := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdef"
	require.NoError(t, gokeyring.Set(testService, testAccount, legacy))

	p := newTestProvider(t)
	require.NoError(t, p.EnsureKey())
	key, err := p.GetKey()
	require.NoError(t, err)
	assert.Equal(t, []byte(legacy), key)
}

func TestProvider_BadStoredKey(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set(testService, testAccount, base64.StdEncoding.EncodeToString([]byte("short"))))

	_, err := newTestProvider(t).GetKey()
	require.ErrorIs(t, err, model.ErrKeyUnavailable)
}

func TestProvider_CachesKeyAndReturnsCopies(t *testing.T) {
	gokeyring.MockInit()
	p := newTestProvider(t)
	require.NoError(t, p.EnsureKey())

	first, err := p.GetKey()
	require.NoError(t, err)
	want := append([]byte(nil), first...)
	clear(first)

	// Read once per process: the vault entry is no longer consulted.
	require.NoError(t, gokeyring.Delete(testService, testAccount))

	second, err := p.GetKey()
	require.NoError(t, err)
	assert.Equal(t, want, second)
}
