package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const cipherPrefix = "enc:v1:"

var ErrDecrypt = errors.New("token decryption failed")

// TokenCipher seals OAuth tokens before they are written to the database.
// A nil *TokenCipher passes values through unchanged.
type TokenCipher struct {
	key [32]byte
}

// NewTokenCipher derives a secretbox key from secret. An empty secret yields
// a nil cipher.
func NewTokenCipher(secret string) *TokenCipher {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	return &TokenCipher{key: sha256.Sum256([]byte(secret))}
}

func (c *TokenCipher) Encrypt(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &c.key)
	return cipherPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values without the cipher prefix
// are returned as-is so rows written before a key was configured stay readable.
func (c *TokenCipher) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, cipherPrefix) {
		return value, nil
	}
	if c == nil {
		return "", fmt.Errorf("%w: no key configured", ErrDecrypt)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, cipherPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(raw) < 24+secretbox.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
