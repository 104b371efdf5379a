package crypt

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

// Sealed blob layout (v1):
//
//	magic(5) | iv(16) | AES-256-CBC ciphertext | HMAC-SHA256(magic|iv|ciphertext)(32)
//
// Blobs without the magic prefix are the legacy layout: raw ciphertext
// encrypted under an all-zero IV with no tag.
var magic = []byte{'S', 'E', 'C', 'M', 0x01}

const tagSize = sha256.Size

var macInfo = []byte("secm file mac v1")

// IsSealed reports whether blob carries the v1 header.
func IsSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, magic)
}

// Seal encrypts plaintext under a fresh random IV and authenticates the result.
func Seal(plaintext, key []byte) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, model.NewError(model.KindCipher, "seal", fmt.Errorf("rand iv: %w", err))
	}

	ciphertext, err := Encrypt(plaintext, key, iv)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(magic)+IVSize+len(ciphertext)+tagSize)
	out = append(out, magic...)
	out = append(out, iv...)
	out = append(out, ciphertext...)

	tag, err := computeTag(key, out)
	if err != nil {
		return nil, err
	}
	return append(out, tag...), nil
}

// Open decrypts a blob produced by Seal, or a legacy zero-IV blob.
// Any tampering with a sealed blob yields model.ErrCorrupt.
func Open(blob, key []byte) ([]byte, error) {
	if !IsSealed(blob) {
		return Decrypt(blob, key, make([]byte, IVSize))
	}

	if len(blob) < len(magic)+IVSize+IVSize+tagSize {
		return nil, model.NewError(model.KindCipher, "open",
			fmt.Errorf("%w: sealed blob too short (%d bytes)", model.ErrCorrupt, len(blob)))
	}

	body, tag := blob[:len(blob)-tagSize], blob[len(blob)-tagSize:]
	want, err := computeTag(key, body)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal(tag, want) {
		return nil, model.NewError(model.KindCipher, "open", fmt.Errorf("%w: authentication tag mismatch", model.ErrCorrupt))
	}

	iv := body[len(magic) : len(magic)+IVSize]
	return Decrypt(body[len(magic)+IVSize:], key, iv)
}

func computeTag(key, data []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, model.NewError(model.KindCipher, "mac", fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key)))
	}

	macKey := make([]byte, sha256.Size)
	defer clear(macKey)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, macInfo), macKey); err != nil {
		return nil, model.NewError(model.KindCipher, "mac", fmt.Errorf("derive mac key: %w", err))
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(data)
	return mac.Sum(nil), nil
}
