package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAccountMapIsDeterministic(t *testing.T) {
	m := NewAccountMap()
	m.Add("zeta.org", "z", "1")
	m.Add("alpha.org", "a", "2")

	first, err := EncodeAccountMap(m)
	require.NoError(t, err)
	second, err := EncodeAccountMap(m.Clone())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Less(t, indexOf(first, "alpha.org"), indexOf(first, "zeta.org"))

	decoded, err := DecodeAccountMap(first)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestEncodeNilMap(t *testing.T) {
	data, err := EncodeAccountMap(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestDecodeAccountMapRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":       "example.com: alice",
		"array":          `[{"username": "a", "password": "b"}]`,
		"null":           "null",
		"wrong value":    `{"x": "alice"}`,
		"unknown field":  `{"x": [{"username": "a", "password": "b", "notes": "n"}]}`,
		"missing field":  `{"x": [{"username": "a"}]}`,
		"wrong type":     `{"x": [{"username": 1, "password": "b"}]}`,
		"trailing data":  `{"x": []} {"y": []}`,
		"python literal": `{'x': [('a', 'b')]}`,
		"truncated":      `{"x": [{"username": "a", "password": "b"}`,
		"empty":          "",
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAccountMap([]byte(payload))
			assert.ErrorIs(t, err, ErrMalformedData)
		})
	}
}

func TestDecodeAccountMapRepairsInvariants(t *testing.T) {
	payload := `{
		"empty.com":      [],
		"dup.com": [
			{"username": "alice", "password": "first"},
			{"username": "alice", "password": "second"}
		]
	}`

	m, err := DecodeAccountMap([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, []string{"dup.com"}, m.Websites())
	assert.Equal(t, []Account{{Username: "alice", Password: "first"}}, m.Accounts("dup.com"))
}

func indexOf(data []byte, s string) int {
	for i := 0; i+len(s) <= len(data); i++ {
		if string(data[i:i+len(s)]) == s {
			return i
		}
	}
	return -1
}
