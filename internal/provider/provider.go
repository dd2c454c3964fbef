// Package provider adapts the external phone-identity provider. The provider
// is authoritative for the uid↔phone mapping; this package only defines the
// narrow capability set the auth core needs and its implementations.
package provider

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken indicates a provider token that failed verification.
	ErrInvalidToken = errors.New("provider token invalid or expired")
	// ErrNotFound indicates no account matches the lookup.
	ErrNotFound = errors.New("account not found")
)

// Account is a provider-owned account. Referenced, never mutated here.
type Account struct {
	UID         string
	PhoneNumber string
	DisplayName string
	Email       string
}

// Identity holds the claims resolved from a verified provider token.
type Identity struct {
	UID         string
	PhoneNumber string
	DisplayName string
	Email       string
}

// Provider is the capability set the auth core requires from the external
// identity system. All calls are blocking remote calls that fail
// independently.
type Provider interface {
	// VerifyToken checks a provider-issued session token and resolves the
	// identity it was minted for. Returns ErrInvalidToken on failure.
	VerifyToken(ctx context.Context, token string) (Identity, error)
	// LookupByPhone resolves the account owning a phone number.
	LookupByPhone(ctx context.Context, phoneNumber string) (Account, error)
	// LookupByUID resolves an account by its stable identifier.
	LookupByUID(ctx context.Context, uid string) (Account, error)
	// MintCredential mints a short-lived provider credential for uid,
	// letting a client re-establish a provider-trusted session.
	MintCredential(ctx context.Context, uid string) (string, error)
}
