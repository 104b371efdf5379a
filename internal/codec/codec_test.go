package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

func TestSerialize_SortedAndDelimited(t *testing.T) {
	set := model.SecretSet{"github": "ghp_x", "api": "abc123"}

	assert.Equal(t, "api abc123\ngithub ghp_x", string(Serialize(set)))
}

func TestSerialize_Empty(t *testing.T) {
	assert.Empty(t, Serialize(model.SecretSet{}))
}

func TestParseSerialize_RoundTrip(t *testing.T) {
	sets := []model.SecretSet{
		{},
		{"api": "abc123"},
		{"aws-key": "AKIA", "aws-secret": "s3cr3t/+=", "github": "ghp_x", "z": "1"},
	}

	for _, set := range sets {
		got, err := Parse(Serialize(set))
		require.NoError(t, err)
		assert.Equal(t, set, got)
	}
}

func TestParse_TrailingNewlineTolerated(t *testing.T) {
	got, err := Parse([]byte("api abc123\n"))
	require.NoError(t, err)
	assert.Equal(t, model.SecretSet{"api": "abc123"}, got)
}

func TestParse_MalformedRecords(t *testing.T) {
	cases := map[string]string{
		"missing value":  "api abc123\ngithub",
		"extra field":    "api abc 123",
		"blank line":     "api abc123\n\ngithub x",
		"duplicate name": "api a\napi b",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Parse([]byte(input))
			require.ErrorIs(t, err, model.ErrMalformedRecord)
			assert.Equal(t, model.KindCodec, model.KindOf(err))
			assert.Nil(t, got)
		})
	}
}
