package profile

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreMergeSemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err := store.MergeUpsert(ctx, "u1", Patch{
		PhoneNumber: String("+15551234567"),
		DisplayName: String("Amina"),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	rec, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	firstWrite := rec.UpdatedAt

	// A partial patch must leave unspecified fields untouched.
	err = store.MergeUpsert(ctx, "u1", Patch{
		Pin:    &PinCredential{Hash: "h", Salt: "s", Iterations: 10000},
		HasPin: Bool(true),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rec, err = store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.PhoneNumber != "+15551234567" || rec.DisplayName != "Amina" {
		t.Fatalf("merge clobbered fields: %+v", rec)
	}
	if !rec.HasPin || rec.Pin == nil || rec.Pin.Hash != "h" {
		t.Fatalf("pin credential not stored: %+v", rec)
	}
	if rec.UpdatedAt.Before(firstWrite) {
		t.Fatal("updatedAt moved backwards")
	}
}

func TestMemoryStoreRetrySafe(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	patch := Patch{PhoneNumber: String("+15551234567"), DisplayName: String("Amina")}
	for i := 0; i < 3; i++ {
		if err := store.MergeUpsert(ctx, "u1", patch); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	rec, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.PhoneNumber != "+15551234567" || rec.DisplayName != "Amina" {
		t.Fatalf("unexpected record after retries: %+v", rec)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.MergeUpsert(ctx, "u1", Patch{
		Pin:    &PinCredential{Hash: "h", Salt: "s", Iterations: 10000},
		HasPin: Bool(true),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rec, _ := store.Get(ctx, "u1")
	rec.Pin.Hash = "mutated"

	again, _ := store.Get(ctx, "u1")
	if again.Pin.Hash != "h" {
		t.Fatal("store leaked internal pin credential")
	}
}
