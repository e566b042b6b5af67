package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	SetSessionKey("test-key")

	plain := `{"session":"abc123","device":"xyz"}`
	encrypted, err := EncryptSessionData(plain)
	require.NoError(t, err)
	require.NotEqual(t, plain, encrypted, "ciphertext should differ from plaintext")

	decrypted, err := DecryptSessionData(encrypted)
	require.NoError(t, err)
	require.Equal(t, plain, decrypted)
}

func TestEncryptProducesUniqueCiphertext(t *testing.T) {
	SetSessionKey("test-key")

	a, err := EncryptSessionData("same input")
	require.NoError(t, err)
	b, err := EncryptSessionData("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "identical ciphertexts mean nonce reuse")
}

func TestDecryptLegacyPlaintext(t *testing.T) {
	SetSessionKey("test-key")

	// Values stored before encryption was enabled pass through untouched.
	got, err := DecryptSessionData("not base64 at all!!!")
	require.NoError(t, err)
	require.Equal(t, "not base64 at all!!!", got)
}

func TestKeyPaddedToAES256(t *testing.T) {
	SetSessionKey("short")
	require.Len(t, sessionKey, 32)

	SetSessionKey("a-very-long-key-that-exceeds-thirty-two-bytes-easily")
	require.Len(t, sessionKey, 32)
}
