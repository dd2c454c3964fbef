package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	issuedAt := time.Now().UTC().Truncate(time.Second)

	signed, expiresAt, err := codec.Encode("u1", "+15551234567", issuedAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if parts := strings.Split(signed, "."); len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	if got, want := expiresAt.Sub(issuedAt), TTL; got != want {
		t.Fatalf("expected expiry %v after issue, got %v", want, got)
	}

	claims, err := codec.Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.UID != "u1" {
		t.Fatalf("expected uid u1, got %q", claims.UID)
	}
	if claims.PhoneNumber != "+15551234567" {
		t.Fatalf("unexpected phone %q", claims.PhoneNumber)
	}
	if claims.IssuedAt.Unix() != issuedAt.Unix() {
		t.Fatalf("iat mismatch: %d vs %d", claims.IssuedAt.Unix(), issuedAt.Unix())
	}
	if claims.ExpiresAt.Unix()-claims.IssuedAt.Unix() != 86400 {
		t.Fatalf("expected exp-iat of 86400s, got %d", claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
	}
}

func TestEncodeDeterministic(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	issuedAt := time.Now()

	a, _, err := codec.Encode("u1", "+15551234567", issuedAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _, err := codec.Encode("u1", "+15551234567", issuedAt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic encoding for a fixed issuedAt")
	}
	if claims, err := codec.Decode(a); err != nil || claims.UID != "u1" {
		t.Fatalf("decode re-encoded token: claims=%+v err=%v", claims, err)
	}
}

func TestDecodeExpired(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	signed, _, err := codec.Encode("u1", "", time.Now().Add(-25*time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "other-secret")

	signed, _, err := other.Encode("u1", "", time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(signed); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestDecodeWrongSecretAndExpired(t *testing.T) {
	// The signature is checked before expiry, so a foreign expired token is
	// rejected for its signature, not its age.
	codec := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "other-secret")

	signed, _, err := other.Encode("u1", "", time.Now().Add(-25*time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(signed); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d", "!!!.!!!.!!!"} {
		if _, err := codec.Decode(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestDecodeRejectsMutations(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	signed, _, err := codec.Encode("u1", "+15551234567", time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for i := 0; i < len(signed); i++ {
		if signed[i] == '.' {
			continue
		}
		replacement := byte('A')
		if signed[i] == 'A' {
			replacement = 'B'
		}
		mutated := signed[:i] + string(replacement) + signed[i+1:]
		_, err := codec.Decode(mutated)
		if err == nil {
			t.Fatalf("mutation at %d unexpectedly verified", i)
		}
		if !errors.Is(err, ErrSignatureInvalid) && !errors.Is(err, ErrMalformed) {
			t.Fatalf("mutation at %d: expected signature or malformed failure, got %v", i, err)
		}
	}
}
