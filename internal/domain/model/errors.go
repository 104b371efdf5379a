package model

import (
	"errors"
	"fmt"
)

// ErrorKind tags an Error with the component family that produced it.
type ErrorKind string

const (
	KindKey     ErrorKind = "key"     // Master key vault failures.
	KindCipher  ErrorKind = "cipher"  // Corrupt ciphertext or bad padding.
	KindCodec   ErrorKind = "codec"   // Malformed stored records.
	KindStorage ErrorKind = "storage" // Backend I/O and lookup failures.
	KindSecret  ErrorKind = "secret"  // Domain validation failures.
)

// Sentinel errors. Match with errors.Is; they are wrapped in *Error.
var (
	ErrKeyUnavailable = errors.New("master key unavailable")

	ErrInvalidPadding = errors.New("invalid padding")
	ErrCorrupt        = errors.New("corrupt ciphertext")

	ErrMalformedRecord = errors.New("malformed record")

	ErrNotFound = errors.New("secret not found")

	ErrEmptyField       = errors.New("name and value must not be empty")
	ErrAlreadyExists    = errors.New("secret already exists")
	ErrNotSelected      = errors.New("no secret selected")
	ErrInvalidCharacter = errors.New("name and value must not contain whitespace")
	ErrInvalidLength    = errors.New("invalid password length")
	ErrUpdateIncomplete = errors.New("update incomplete: old secret removed but new secret not written")
)

// Error is the single structured error type surfaced by every component.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
