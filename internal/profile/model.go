package profile

import (
	"errors"
	"time"
)

// ErrNotFound indicates no record exists for the uid.
var ErrNotFound = errors.New("profile record not found")

// PinCredential is the opaque PIN material supplied by the client. The
// server never derives it; it only stores and compares it.
type PinCredential struct {
	Hash       string
	Salt       string
	Iterations int
}

// Record is the per-uid profile document. hasPin true implies a complete
// PinCredential is stored.
type Record struct {
	UID         string
	PhoneNumber string
	DisplayName string
	Email       string
	Pin         *PinCredential
	HasPin      bool
	UpdatedAt   time.Time
}

// Patch describes a merge-upsert: only non-nil fields are written, leaving
// the rest of an existing record untouched.
type Patch struct {
	PhoneNumber *string
	DisplayName *string
	Email       *string
	Pin         *PinCredential
	HasPin      *bool
}

// String returns a pointer to s, or nil when s is empty so the merge leaves
// the stored value alone.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Bool returns a pointer to b for use in a Patch.
func Bool(b bool) *bool {
	return &b
}
