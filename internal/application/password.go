package application

import (
	"fmt"
	"math/rand/v2"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

// DefaultPasswordLength is used when the caller does not choose a length.
const DefaultPasswordLength = 10

const (
	passwordLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	passwordDigits  = "0123456789"
	passwordSymbols = "!@#$%^&*-_=+;:,./?"
)

// GeneratePassword returns a random password of letters. With withSymbols set,
// exactly one digit and one symbol replace two letters at random positions.
//
// This generator produces values for people to use. It is not the master key
// source; see the keyring adapter for that.
func GeneratePassword(length int, withSymbols bool) (string, error) {
	if length <= 0 || (withSymbols && length < 2) {
		return "", model.NewError(model.KindSecret, "generate", fmt.Errorf("%w: %d", model.ErrInvalidLength, length))
	}

	letters := length
	if withSymbols {
		letters -= 2
	}

	out := make([]byte, 0, length)
	for range letters {
		out = append(out, pick(passwordLetters))
	}
	if withSymbols {
		out = append(out, pick(passwordDigits), pick(passwordSymbols))
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return string(out), nil
}

func pick(charset string) byte {
	return charset[rand.IntN(len(charset))]
}
