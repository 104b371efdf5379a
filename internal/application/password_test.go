package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

func countIn(s, charset string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(charset, r) {
			n++
		}
	}
	return n
}

func TestGeneratePassword_LettersOnly(t *testing.T) {
	for range 50 {
		pw, err := GeneratePassword(DefaultPasswordLength, false)
		require.NoError(t, err)
		assert.Len(t, pw, DefaultPasswordLength)
		assert.Equal(t, DefaultPasswordLength, countIn(pw, passwordLetters))
	}
}

func TestGeneratePassword_ExactlyOneDigitAndSymbol(t *testing.T) {
	for range 50 {
		pw, err := GeneratePassword(12, true)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		assert.Equal(t, 1, countIn(pw, passwordDigits))
		assert.Equal(t, 1, countIn(pw, passwordSymbols))
		assert.Equal(t, 10, countIn(pw, passwordLetters))
	}
}

func TestGeneratePassword_MinimumWithSymbols(t *testing.T) {
	pw, err := GeneratePassword(2, true)
	require.NoError(t, err)
	assert.Equal(t, 1, countIn(pw, passwordDigits))
	assert.Equal(t, 1, countIn(pw, passwordSymbols))
}

func TestGeneratePassword_InvalidLength(t *testing.T) {
	for _, tc := range []struct {
		length  int
		symbols bool
	}{
		{0, false},
		{-1, false},
		{1, true},
	} {
		_, err := GeneratePassword(tc.length, tc.symbols)
		require.ErrorIs(t, err, model.ErrInvalidLength)
	}
}

func TestGeneratePassword_NoWhitespace(t *testing.T) {
	pw, err := GeneratePassword(64, true)
	require.NoError(t, err)
	assert.Equal(t, -1, strings.IndexFunc(pw, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }))
}
