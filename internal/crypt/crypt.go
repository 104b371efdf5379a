// Package crypt implements the AES-256-CBC cipher used for the encrypted
// secret file, plus the sealed blob format written to disk.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the CBC initialization vector length in bytes.
	IVSize = aes.BlockSize
)

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding. Output is
// deterministic for identical inputs; callers own IV discipline.
func Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newBlock(key, iv, "encrypt")
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt. It returns model.ErrCorrupt when the ciphertext is
// empty or not a whole number of blocks and model.ErrInvalidPadding when the
// recovered padding is malformed.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newBlock(key, iv, "decrypt")
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, model.NewError(model.KindCipher, "decrypt",
			fmt.Errorf("%w: length %d is not a positive multiple of %d", model.ErrCorrupt, len(ciphertext), aes.BlockSize))
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)

	plaintext, err := unpad(out)
	if err != nil {
		return nil, model.NewError(model.KindCipher, "decrypt", err)
	}
	return plaintext, nil
}

func newBlock(key, iv []byte, op string) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, model.NewError(model.KindCipher, op, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key)))
	}
	if len(iv) != IVSize {
		return nil, model.NewError(model.KindCipher, op, fmt.Errorf("iv must be %d bytes, got %d", IVSize, len(iv)))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, model.NewError(model.KindCipher, op, fmt.Errorf("aes.NewCipher: %w", err))
	}
	return block, nil
}

// pad appends PKCS#7 padding. A full block is added when len(b) is already aligned.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: pad length %d", model.ErrInvalidPadding, n)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", model.ErrInvalidPadding)
		}
	}
	return b[:len(b)-n], nil
}
