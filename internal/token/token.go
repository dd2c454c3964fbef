// Package token implements the session token codec: a compact HS256-signed
// JWT carrying uid, optional phone number, and a fixed 24h expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed session token lifetime. Expiry is always issuedAt + TTL;
// expiry is the only way a token dies.
const TTL = 24 * time.Hour

var (
	// ErrExpired indicates a correctly signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrMalformed indicates a token that does not parse as a compact JWT.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid indicates a token whose signature does not verify.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Claims carried inside a session token.
type Claims struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a single shared secret,
// injected once at startup.
type Codec struct {
	secret []byte
}

// NewCodec returns a codec signing with the given shared secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode mints a token for uid (and optional phone) issued at issuedAt.
// The result is deterministic for a given issuedAt. Returns the compact
// token and its expiry, always issuedAt + TTL.
func (c *Codec) Encode(uid, phoneNumber string, issuedAt time.Time) (string, time.Time, error) {
	issuedAt = issuedAt.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(TTL)
	claims := Claims{
		UID:         uid,
		PhoneNumber: phoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies and parses a token. The signature is checked before
// expiry, so a tampered token fails with ErrSignatureInvalid regardless of
// its exp claim. Returns ErrMalformed, ErrSignatureInvalid, or ErrExpired
// on failure.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			return Claims{}, ErrMalformed
		}
	}
	return claims, nil
}
