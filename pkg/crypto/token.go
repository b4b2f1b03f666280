// Package crypto provides authenticated encryption for provider credentials.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// tokenVersion marks the current token layout. Bump when the layout changes.
const tokenVersion = 0x01

var (
	// ErrInvalidKey is returned when the encryption key is empty.
	ErrInvalidKey = errors.New("invalid encryption key: must not be empty")
	// ErrDecryptionFailed is returned when a token is malformed, tampered with,
	// or was encrypted under a different key.
	ErrDecryptionFailed = errors.New("decryption failed: invalid token or wrong key")
)

// TokenCipher provides AES-256-GCM authenticated encryption for credential blobs.
// Tokens are self-describing: base64url(version || timestamp || nonce || ciphertext||tag).
// The timestamp is informational only - stored credentials never expire.
type TokenCipher struct {
	gcm cipher.AEAD
	now func() time.Time
}

// NewTokenCipher creates a cipher from a key string.
// The key can be:
//   - A base64-encoded 32-byte key (e.g., from: openssl rand -base64 32)
//   - Any passphrase (will be hashed to 32 bytes with SHA-256)
func NewTokenCipher(keyInput string) (*TokenCipher, error) {
	if keyInput == "" {
		return nil, ErrInvalidKey
	}

	var key []byte

	decoded, err := base64.StdEncoding.DecodeString(keyInput)
	if err == nil && len(decoded) == 32 {
		key = decoded
	} else {
		hash := sha256.Sum256([]byte(keyInput))
		key = hash[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &TokenCipher{gcm: gcm, now: time.Now}, nil
}

// Encrypt encrypts plaintext into a versioned, timestamped token.
// The version byte and timestamp are bound into the authentication tag as
// additional data, so any tampering fails Decrypt.
func (c *TokenCipher) Encrypt(plaintext []byte) (string, error) {
	header := make([]byte, 9)
	header[0] = tokenVersion
	binary.BigEndian.PutUint64(header[1:], uint64(c.now().Unix()))

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	token := make([]byte, 0, len(header)+len(nonce)+len(plaintext)+c.gcm.Overhead())
	token = append(token, header...)
	token = append(token, nonce...)
	token = c.gcm.Seal(token, nonce, plaintext, header)

	return base64.URLEncoding.EncodeToString(token), nil
}

// Decrypt verifies and decrypts a token produced by Encrypt.
// Returns ErrDecryptionFailed for malformed input, version mismatch, or
// authentication failure.
func (c *TokenCipher) Decrypt(token string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: base64 decode failed", ErrDecryptionFailed)
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < 9+nonceSize+c.gcm.Overhead() {
		return nil, fmt.Errorf("%w: token too short", ErrDecryptionFailed)
	}
	if data[0] != tokenVersion {
		return nil, fmt.Errorf("%w: unsupported token version %d", ErrDecryptionFailed, data[0])
	}

	header, nonce, ciphertext := data[:9], data[9:9+nonceSize], data[9+nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryptionFailed)
	}

	return plaintext, nil
}

// IssuedAt extracts the informational timestamp from a token without decrypting it.
func (c *TokenCipher) IssuedAt(token string) (time.Time, error) {
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(data) < 9 {
		return time.Time{}, fmt.Errorf("%w: malformed token", ErrDecryptionFailed)
	}
	return time.Unix(int64(binary.BigEndian.Uint64(data[1:9])), 0), nil
}

// GenerateKey produces a new random 32-byte key, base64 encoded.
// Operational utility for provisioning configuration, not used at runtime.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
