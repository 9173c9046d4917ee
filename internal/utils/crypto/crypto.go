package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// sealedPrefix marks values produced by TokenCipher.Seal so plaintext rows
// written before encryption was enabled can still be read.
const sealedPrefix = "enc:v1:"

// TokenCipher seals access tokens at rest with AES-256-GCM.
// A zero-value or nil TokenCipher passes values through unchanged.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher derives a 32 byte key from secret. An empty secret disables sealing.
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if strings.TrimSpace(secret) == "" {
		return &TokenCipher{}, nil
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &TokenCipher{aead: gcm}, nil
}

// Enabled reports whether values are actually encrypted.
func (c *TokenCipher) Enabled() bool {
	return c != nil && c.aead != nil
}

// Seal encrypts plaintext. Empty input stays empty.
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	if !c.Enabled() || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix are
// returned as-is.
func (c *TokenCipher) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if !c.Enabled() {
		return "", errors.New("sealed value found but no encryption key configured")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", err
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
