package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) (*CodeStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCodeStore(client, time.Minute, 3), mr
}

func TestCodeStoreCheckConsumesOnMatch(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}

	phone, err := store.Check(ctx, "vid-1", "123456")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if phone != "+15550001111" {
		t.Fatalf("expected phone back, got %q", phone)
	}

	// Consumed: a second check must not succeed.
	if _, err := store.Check(ctx, "vid-1", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after consumption, got %v", err)
	}
}

func TestCodeStoreCheckMismatch(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Check(ctx, "vid-1", "654321"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	// The right code still works after a single mistake.
	if _, err := store.Check(ctx, "vid-1", "123456"); err != nil {
		t.Fatalf("check after mismatch: %v", err)
	}
}

func TestCodeStoreAttemptCeiling(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Check(ctx, "vid-1", "000001"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("attempt 1: %v", err)
	}
	if _, err := store.Check(ctx, "vid-1", "000002"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("attempt 2: %v", err)
	}
	if _, err := store.Check(ctx, "vid-1", "000003"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("attempt 3 should hit the ceiling, got %v", err)
	}

	// The record is gone; even the right code no longer works.
	if _, err := store.Check(ctx, "vid-1", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after invalidation, got %v", err)
	}
}

func TestCodeStoreExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Check(ctx, "vid-1", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after expiry, got %v", err)
	}
}

func TestCodeStoreResendTokenRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SaveResendToken(ctx, "rst-1", "vid-1"); err != nil {
		t.Fatalf("save resend token: %v", err)
	}

	vid, err := store.ResolveResendToken(ctx, "rst-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if vid != "vid-1" {
		t.Fatalf("expected vid-1, got %q", vid)
	}

	if _, err := store.ResolveResendToken(ctx, "unknown"); !errors.Is(err, ErrResendNotFound) {
		t.Fatalf("expected ErrResendNotFound, got %v", err)
	}
}

func TestCodeStoreRotate(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, "vid-1", "+15550001111", "123456"); err != nil {
		t.Fatalf("create: %v", err)
	}

	phone, err := store.Rotate(ctx, "vid-1", "999999")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if phone != "+15550001111" {
		t.Fatalf("expected phone back from rotate, got %q", phone)
	}

	// Only the rotated code is valid now.
	if _, err := store.Check(ctx, "vid-1", "123456"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("old code should mismatch, got %v", err)
	}
	if _, err := store.Check(ctx, "vid-1", "999999"); err != nil {
		t.Fatalf("rotated code should match: %v", err)
	}
}

func TestCodeStoreQuotaCounter(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.CountDispatch(ctx, "+15550001111", time.Minute)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	// The window resets the counter.
	mr.FastForward(2 * time.Minute)
	count, err := store.CountDispatch(ctx, "+15550001111", time.Minute)
	if err != nil {
		t.Fatalf("count after window: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter reset, got %d", count)
	}
}
