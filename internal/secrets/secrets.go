// Package secrets encrypts API credentials stored in the settings tables.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of the AES-256 key in bytes.
	KeySize = 32
	// PBKDF2Iterations is the number of iterations for key derivation.
	PBKDF2Iterations = 100000

	// prefix marks an encrypted value so plain values written by older
	// versions are still readable.
	prefix = "enc:v1:"
)

var (
	ErrInvalidKey        = errors.New("invalid encryption key: must be at least 32 characters")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrDecryptionFailed  = errors.New("decryption failed")
	// ErrNoKey is returned when a sealed value is read without a Box.
	ErrNoKey = errors.New("value is encrypted but no encryption secret is configured")
)

// Box seals short strings with AES-256-GCM under a key derived from a
// master secret and a purpose label.
type Box struct {
	aead cipher.AEAD
}

// NewBox derives the key for purpose from secret.
func NewBox(secret, purpose string) (*Box, error) {
	if len(secret) < 32 {
		return nil, ErrInvalidKey
	}
	master := sha256.Sum256([]byte(secret))
	key := pbkdf2.Key(master[:], []byte("folio:"+purpose), PBKDF2Iterations, KeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Seal encrypts plaintext and returns a printable value. Empty stays empty.
func (b *Box) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the encryption
// prefix are returned unchanged.
func (b *Box) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, prefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	ns := b.aead.NonceSize()
	if len(raw) <= ns {
		return "", ErrInvalidCiphertext
	}
	plaintext, err := b.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsSealed reports whether value was produced by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, prefix)
}

// Redact masks all but the last four characters of a credential.
func Redact(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
