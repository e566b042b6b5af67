package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

var sessionKey []byte

// SetSessionKey installs the key used to encrypt platform session blobs at
// rest. The key is padded/truncated to 32 bytes (AES-256).
func SetSessionKey(key string) {
	finalKey := make([]byte, 32)
	copy(finalKey, []byte(key))
	sessionKey = finalKey
}

// EncryptSessionData encrypts a session blob with AES-GCM and returns it
// base64 encoded. With no key configured the blob is stored as-is.
func EncryptSessionData(plain string) (string, error) {
	if len(sessionKey) == 0 {
		return plain, nil
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptSessionData reverses EncryptSessionData. Values that do not decode
// as base64 are treated as legacy plain text and returned unchanged.
func DecryptSessionData(stored string) (string, error) {
	if len(sessionKey) == 0 {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return stored, nil
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return stored, nil
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt session data: %w", err)
	}
	return string(plain), nil
}
