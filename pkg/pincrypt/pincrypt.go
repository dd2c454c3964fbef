// Package pincrypt derives PIN credential material the way API clients are
// expected to: PBKDF2-SHA256 over the PIN with a random salt. The server
// treats the result as opaque; this package exists for client SDKs and for
// exercising the auth flows in tests.
package pincrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the recommended PBKDF2 iteration count.
	DefaultIterations = 10000

	keyLength  = 32
	saltLength = 16
)

// NewSalt returns a random hex-encoded salt.
func NewSalt() (string, error) {
	b := make([]byte, saltLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DeriveHash computes the hex-encoded PBKDF2-SHA256 hash of pin with the
// hex-encoded salt and iteration count.
func DeriveHash(pin, salt string, iterations int) (string, error) {
	if pin == "" {
		return "", errors.New("pincrypt: pin is required")
	}
	if iterations <= 0 {
		return "", errors.New("pincrypt: iterations must be positive")
	}
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return "", errors.New("pincrypt: salt must be hex encoded")
	}
	key := pbkdf2.Key([]byte(pin), rawSalt, iterations, keyLength, sha256.New)
	return hex.EncodeToString(key), nil
}
