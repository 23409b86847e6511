// Package tokenbox seals access tokens before they reach the database.
package tokenbox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sb1:"
	nonceSize    = 24
)

// ErrMalformed is returned when a sealed value cannot be opened.
var ErrMalformed = errors.New("tokenbox: malformed sealed value")

// Box encrypts with NaCl secretbox. A nil *Box passes values through unchanged.
type Box struct {
	key [32]byte
}

// New derives a 32 byte key from secret. An empty secret disables sealing (returns nil).
func New(secret string) *Box {
	if secret == "" {
		return nil
	}
	return &Box{key: sha256.Sum256([]byte(secret))}
}

// Seal encrypts plain. Empty input stays empty.
func (b *Box) Seal(plain string) (string, error) {
	if b == nil || plain == "" {
		return plain, nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix are
// returned as is so rows written before sealing was enabled keep working.
func (b *Box) Open(sealed string) (string, error) {
	if b == nil || !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrMalformed
	}
	return string(plain), nil
}
