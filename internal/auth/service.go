// Package auth implements the authentication core: issuing session tokens
// after OTP verification, PIN enrollment, PIN login, and token-based profile
// fetch. The core is stateless; the profile store is the only shared mutable
// state and all writes to it are additive merge-upserts, safe to retry.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/mokili-id/mokili_id/internal/notification"
	"github.com/mokili-id/mokili_id/internal/profile"
	"github.com/mokili-id/mokili_id/internal/provider"
	"github.com/mokili-id/mokili_id/internal/token"
)

// Profile is the response projection of an account merged with its profile
// record. Provider-sourced fields win; the store is the fallback. It is
// recomputed on every response and never cached.
type Profile struct {
	UID         string    `json:"uid"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// IssueResult is the outcome of any token-issuing operation.
type IssueResult struct {
	Token     string
	ExpiresAt time.Time
	Profile   Profile
}

// LoginResult adds the provider-minted credential returned by PIN login.
type LoginResult struct {
	IssueResult
	ProviderCredential string
}

// SetPinInput carries the PIN enrollment request. All fields are required;
// the hash, salt, and iteration count are opaque client-derived material.
type SetPinInput struct {
	PhoneNumber string
	PinHash     string
	Salt        string
	Iterations  int
}

// Service orchestrates the provider adapter, profile store, and token codec.
type Service struct {
	provider provider.Provider
	store    profile.Store
	codec    *token.Codec
	notifier notification.Notifier
}

// NewService builds the auth core with its collaborators.
func NewService(p provider.Provider, store profile.Store, codec *token.Codec, notifier notification.Notifier) *Service {
	return &Service{provider: p, store: store, codec: codec, notifier: notifier}
}

// IssueAfterOtp verifies a provider-issued token and mints a session token.
// The freshly observed account fields are merged back into the profile
// record; the write is idempotent so a retry after partial failure is safe.
func (s *Service) IssueAfterOtp(ctx context.Context, providerToken string) (IssueResult, error) {
	if providerToken == "" {
		return IssueResult{}, fail(KindInvalidArgument, "providerToken is required")
	}
	identity, err := s.provider.VerifyToken(ctx, providerToken)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidToken) {
			return IssueResult{}, failWith(KindUnauthenticated, "provider token verification failed", err)
		}
		return IssueResult{}, failWith(KindInternal, "failed to verify provider token", err)
	}

	rec, err := s.readRecord(ctx, identity.UID)
	if err != nil {
		return IssueResult{}, err
	}

	now := time.Now().UTC()
	prof := project(identity.UID, now,
		[]string{identity.PhoneNumber, rec.PhoneNumber},
		[]string{identity.DisplayName, rec.DisplayName},
		[]string{identity.Email, rec.Email})

	signed, expiresAt, err := s.codec.Encode(prof.UID, prof.PhoneNumber, now)
	if err != nil {
		return IssueResult{}, failWith(KindInternal, "failed to issue session token", err)
	}

	patch := profile.Patch{
		PhoneNumber: profile.String(prof.PhoneNumber),
		DisplayName: profile.String(prof.DisplayName),
		Email:       profile.String(prof.Email),
	}
	if err := s.store.MergeUpsert(ctx, prof.UID, patch); err != nil {
		return IssueResult{}, failWith(KindInternal, "failed to persist profile", err)
	}

	s.notify(ctx, notification.KindTokenIssued, prof.UID)
	return IssueResult{Token: signed, ExpiresAt: expiresAt, Profile: prof}, nil
}

// SetPin enrolls a PIN credential for the account owning the phone number.
// The phone lookup is the only authorization here; the operation never
// creates provider accounts. A session token is minted on success.
func (s *Service) SetPin(ctx context.Context, in SetPinInput) (IssueResult, error) {
	if in.PhoneNumber == "" || in.PinHash == "" || in.Salt == "" || in.Iterations <= 0 {
		return IssueResult{}, fail(KindInvalidArgument, "phoneNumber, pinHash, salt, and iterations are required")
	}
	acc, err := s.provider.LookupByPhone(ctx, in.PhoneNumber)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return IssueResult{}, failWith(KindNotFound, "no account for this phone number", err)
		}
		return IssueResult{}, failWith(KindInternal, "failed to look up account", err)
	}

	patch := profile.Patch{
		PhoneNumber: profile.String(in.PhoneNumber),
		Pin:         &profile.PinCredential{Hash: in.PinHash, Salt: in.Salt, Iterations: in.Iterations},
		HasPin:      profile.Bool(true),
	}
	if err := s.store.MergeUpsert(ctx, acc.UID, patch); err != nil {
		return IssueResult{}, failWith(KindInternal, "failed to store PIN credential", err)
	}

	now := time.Now().UTC()
	prof := project(acc.UID, now,
		[]string{in.PhoneNumber, acc.PhoneNumber},
		[]string{acc.DisplayName},
		[]string{acc.Email})

	signed, expiresAt, err := s.codec.Encode(prof.UID, prof.PhoneNumber, now)
	if err != nil {
		return IssueResult{}, failWith(KindInternal, "failed to issue session token", err)
	}

	s.notify(ctx, notification.KindPinSet, prof.UID)
	return IssueResult{Token: signed, ExpiresAt: expiresAt, Profile: prof}, nil
}

// LoginWithPin authenticates by phone number and PIN hash. Each step is a
// hard gate: account lookup, record read, constant-time hash comparison,
// then the hasPin flag. On success a provider credential is minted alongside
// the session token. No store write occurs.
func (s *Service) LoginWithPin(ctx context.Context, phoneNumber, pinHash string) (LoginResult, error) {
	if phoneNumber == "" || pinHash == "" {
		return LoginResult{}, fail(KindInvalidArgument, "phoneNumber and pinHash are required")
	}
	acc, err := s.provider.LookupByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return LoginResult{}, failWith(KindNotFound, "no account for this phone number", err)
		}
		return LoginResult{}, failWith(KindInternal, "failed to look up account", err)
	}

	rec, err := s.store.Get(ctx, acc.UID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return LoginResult{}, failWith(KindNotFound, "no profile record for this account", err)
		}
		return LoginResult{}, failWith(KindInternal, "failed to read profile", err)
	}

	if rec.Pin == nil || rec.Pin.Hash == "" {
		return LoginResult{}, fail(KindFailedPrecondition, "PIN not set for this account")
	}
	if subtle.ConstantTimeCompare([]byte(rec.Pin.Hash), []byte(pinHash)) != 1 {
		s.notify(ctx, notification.KindPinLoginDenied, acc.UID)
		return LoginResult{}, fail(KindPermissionDenied, "invalid PIN")
	}
	if !rec.HasPin {
		// A stored hash without the flag means a stale or partial credential.
		return LoginResult{}, fail(KindFailedPrecondition, "PIN not set for this account")
	}

	credential, err := s.provider.MintCredential(ctx, acc.UID)
	if err != nil {
		return LoginResult{}, failWith(KindInternal, "failed to mint provider credential", err)
	}

	now := time.Now().UTC()
	prof := project(acc.UID, now,
		[]string{phoneNumber, acc.PhoneNumber, rec.PhoneNumber},
		[]string{acc.DisplayName, rec.DisplayName},
		[]string{acc.Email, rec.Email})

	signed, expiresAt, err := s.codec.Encode(prof.UID, prof.PhoneNumber, now)
	if err != nil {
		return LoginResult{}, failWith(KindInternal, "failed to issue session token", err)
	}

	s.notify(ctx, notification.KindPinLogin, prof.UID)
	return LoginResult{
		IssueResult:        IssueResult{Token: signed, ExpiresAt: expiresAt, Profile: prof},
		ProviderCredential: credential,
	}, nil
}

// FetchProfile verifies a session token and returns the projected profile.
// Read-only: no store write happens here, even when the store holds stale
// copies of provider fields.
func (s *Service) FetchProfile(ctx context.Context, sessionToken string) (Profile, error) {
	if sessionToken == "" {
		return Profile{}, fail(KindInvalidArgument, "token is required")
	}
	claims, err := s.codec.Decode(sessionToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return Profile{}, failWith(KindUnauthenticated, "session token has expired", err)
		}
		return Profile{}, failWith(KindUnauthenticated, "invalid session token", err)
	}
	if claims.UID == "" {
		return Profile{}, fail(KindUnauthenticated, "invalid token payload")
	}

	acc, err := s.provider.LookupByUID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return Profile{}, failWith(KindNotFound, "account no longer exists", err)
		}
		return Profile{}, failWith(KindInternal, "failed to look up account", err)
	}

	rec, err := s.readRecord(ctx, claims.UID)
	if err != nil {
		return Profile{}, err
	}

	return project(claims.UID, time.Now().UTC(),
		[]string{claims.PhoneNumber, acc.PhoneNumber, rec.PhoneNumber},
		[]string{acc.DisplayName, rec.DisplayName},
		[]string{acc.Email, rec.Email}), nil
}

// readRecord tolerates a missing record, returning empty defaults.
func (s *Service) readRecord(ctx context.Context, uid string) (profile.Record, error) {
	rec, err := s.store.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Record{}, nil
		}
		return profile.Record{}, failWith(KindInternal, "failed to read profile", err)
	}
	return rec, nil
}

// project builds the response profile, taking the first non-empty candidate
// for each field. Candidates are ordered provider-first.
func project(uid string, issuedAt time.Time, phones, names, emails []string) Profile {
	return Profile{
		UID:         uid,
		PhoneNumber: first(phones),
		DisplayName: first(names),
		Email:       first(emails),
		IssuedAt:    issuedAt,
	}
}

func first(candidates []string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func (s *Service) notify(ctx context.Context, kind, uid string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notification.Event{Kind: kind, UID: uid})
}
