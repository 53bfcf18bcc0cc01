// Package crypt provides AES-256-GCM sealing for values the storefront keeps
// at rest, such as the shopper's bearer token in durable session storage.
//
// Sealed strings are base64url(nonce || ciphertext || tag), so they can be
// written to a file, a Redis key or a DB column as-is.
//
//	box, err := crypt.Default()
//	enc, err := box.SealString("eyJhbGciOi...")
//	tok, err := box.OpenString(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sparkcrackers/storefront/config"
)

// ErrDecrypt is returned when decoding or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// Box seals and opens values with one key.
type Box struct {
	aead cipher.AEAD
}

// NewBox derives a 32-byte key from secret via SHA-256.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("crypt: empty secret")
	}
	k := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Default returns a Box keyed from APP_KEY, falling back to JWT_SECRET.
func Default() (*Box, error) {
	return NewBox(config.Get("APP_KEY", config.JWTSecret()))
}

func (b *Box) Seal(data []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b.aead.Seal(nonce, nonce, data, nil)), nil
}

func (b *Box) Open(encoded string) ([]byte, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	n := b.aead.NonceSize()
	if len(data) < n {
		return nil, ErrDecrypt
	}
	plain, err := b.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (b *Box) SealString(s string) (string, error) { return b.Seal([]byte(s)) }

func (b *Box) OpenString(encoded string) (string, error) {
	p, err := b.Open(encoded)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// SealJSON marshals v and seals the result.
func (b *Box) SealJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	return b.Seal(raw)
}

// OpenJSON opens encoded and unmarshals it into dest.
func (b *Box) OpenJSON(encoded string, dest interface{}) error {
	raw, err := b.Open(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("crypt: unmarshal: %w", err)
	}
	return nil
}

// Hash returns the SHA-256 hex digest of input.
func Hash(input string) string {
	h := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", h)
}
