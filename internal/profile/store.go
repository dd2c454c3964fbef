package profile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists profile records keyed by uid. MergeUpsert must be atomic
// per key; it is the only point of shared mutable state in the system.
type Store interface {
	// Get returns the record for uid, or ErrNotFound.
	Get(ctx context.Context, uid string) (Record, error)
	// MergeUpsert creates the record if absent or updates only the fields
	// set on the patch. Writes are additive and safe to retry.
	MergeUpsert(ctx context.Context, uid string, patch Patch) error
}

// Schema is the profiles table DDL, applied by the dev seed path and by
// deployments that manage schema out of band.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
    uid            text PRIMARY KEY,
    phone_number   text,
    display_name   text,
    email          text,
    pin_hash       text,
    pin_salt       text,
    pin_iterations integer,
    has_pin        boolean NOT NULL DEFAULT false,
    updated_at     timestamptz NOT NULL DEFAULT now()
)`

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed profile store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the profiles table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

// Get fetches a record by uid.
func (s *PostgresStore) Get(ctx context.Context, uid string) (Record, error) {
	row := s.db.QueryRow(ctx, `SELECT uid, phone_number, display_name, email,
        pin_hash, pin_salt, pin_iterations, has_pin, updated_at
        FROM profiles WHERE uid = $1`, uid)

	var rec Record
	var phone, name, email, pinHash, pinSalt *string
	var pinIters *int
	var updatedAt time.Time
	if err := row.Scan(&rec.UID, &phone, &name, &email, &pinHash, &pinSalt, &pinIters, &rec.HasPin, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if phone != nil {
		rec.PhoneNumber = *phone
	}
	if name != nil {
		rec.DisplayName = *name
	}
	if email != nil {
		rec.Email = *email
	}
	if pinHash != nil {
		cred := PinCredential{Hash: *pinHash}
		if pinSalt != nil {
			cred.Salt = *pinSalt
		}
		if pinIters != nil {
			cred.Iterations = *pinIters
		}
		rec.Pin = &cred
	}
	rec.UpdatedAt = updatedAt.UTC()
	return rec, nil
}

// MergeUpsert writes only the fields present on the patch. updated_at is
// server-assigned and never moves backwards.
func (s *PostgresStore) MergeUpsert(ctx context.Context, uid string, patch Patch) error {
	var pinHash, pinSalt *string
	var pinIters *int
	if patch.Pin != nil {
		pinHash = &patch.Pin.Hash
		pinSalt = &patch.Pin.Salt
		pinIters = &patch.Pin.Iterations
	}
	_, err := s.db.Exec(ctx, `INSERT INTO profiles
        (uid, phone_number, display_name, email, pin_hash, pin_salt, pin_iterations, has_pin, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, false), now())
        ON CONFLICT (uid) DO UPDATE SET
            phone_number   = COALESCE($2, profiles.phone_number),
            display_name   = COALESCE($3, profiles.display_name),
            email          = COALESCE($4, profiles.email),
            pin_hash       = COALESCE($5, profiles.pin_hash),
            pin_salt       = COALESCE($6, profiles.pin_salt),
            pin_iterations = COALESCE($7, profiles.pin_iterations),
            has_pin        = COALESCE($8, profiles.has_pin),
            updated_at     = GREATEST(profiles.updated_at, now())`,
		uid, patch.PhoneNumber, patch.DisplayName, patch.Email,
		pinHash, pinSalt, pinIters, patch.HasPin)
	return err
}
