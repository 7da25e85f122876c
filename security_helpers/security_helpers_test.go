package security_helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setCryptoEnv(t *testing.T) {
	t.Setenv("AES_KEY", "0123456789abcdef")
	t.Setenv("AES_IV", "fedcba9876543210")
	t.Setenv("SALT", "pepper")
}

func TestObjectIDRoundTrip(t *testing.T) {
	setCryptoEnv(t)

	encoded := Encode(42, "Messages", "a-salt")

	require.NotEmpty(t, encoded)

	id, objectType := Decode(encoded)

	require.Equal(t, uint64(42), id)
	require.Equal(t, "Messages", objectType)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	setCryptoEnv(t)

	for _, bad := range []string{"", "not-an-id", "najsU2FsdA"} {
		id, objectType := Decode(bad)

		require.Zero(t, id)
		require.Empty(t, objectType)
	}
}

func TestDecodeRejectsTamperedCiphertext(t *testing.T) {
	setCryptoEnv(t)

	encoded := Encode(42, "Messages", "a-salt")

	replacement := "A"

	if encoded[0] == 'A' {
		replacement = "B"
	}

	tampered := replacement + encoded[1:]

	id, _ := Decode(tampered)

	require.Zero(t, id)
}

func TestPasswordHashing(t *testing.T) {
	setCryptoEnv(t)

	hash, err := HashPassword("hunter22")

	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, CheckPasswordHash("hunter22", hash))
	require.False(t, CheckPasswordHash("hunter23", hash))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "he", Truncate("hello", 2))
	require.Equal(t, "hello", Truncate("hello", 10))
	require.Equal(t, "", Truncate("", 3))
	require.Equal(t, "héll", Truncate("héllo", 4))
}
