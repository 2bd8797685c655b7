package profile

import (
	"context"
	"errors"
	"testing"

	"chatterbox/internal/app/verify"
)

func TestMaterialize(t *testing.T) {
	user, err := Materialize(&verify.Identity{ID: "u123", PhoneNumber: "+15550001111"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if user.UserID != "u123" {
		t.Fatalf("expected userId u123, got %q", user.UserID)
	}
	if user.Username != "" {
		t.Fatalf("expected empty username, got %q", user.Username)
	}
}

func TestMaterializeMissingIdentity(t *testing.T) {
	if _, err := Materialize(nil); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("expected ErrIdentityMissing for nil identity, got %v", err)
	}
	if _, err := Materialize(&verify.Identity{}); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("expected ErrIdentityMissing for empty id, got %v", err)
	}
}

func TestEditUsernameAndSave(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	user, err := Materialize(&verify.Identity{ID: "u123"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	user.EditUsername("alice")
	if err := svc.Save(ctx, *user); err != nil {
		t.Fatalf("save: %v", err)
	}

	puts := store.Puts()
	if len(puts) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(puts))
	}
	if puts[0] != (ChatUser{UserID: "u123", Username: "alice"}) {
		t.Fatalf("unexpected payload: %+v", puts[0])
	}

	stored, err := store.Get(ctx, "u123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Username != "alice" {
		t.Fatalf("expected stored username alice, got %q", stored.Username)
	}
}

func TestSaveTwiceWritesTwice(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	user := ChatUser{UserID: "u123", Username: "alice"}
	if err := svc.Save(ctx, user); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.Save(ctx, user); err != nil {
		t.Fatalf("second save: %v", err)
	}

	puts := store.Puts()
	if len(puts) != 2 {
		t.Fatalf("expected two independent writes, got %d", len(puts))
	}
	if puts[0] != puts[1] {
		t.Fatalf("expected identical payloads, got %+v and %+v", puts[0], puts[1])
	}
}

type failingStore struct {
	*MemoryStore
	putErr error
}

func (s *failingStore) Put(ctx context.Context, user ChatUser) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, user)
}

func TestSaveFailureLeavesRecordRetryable(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), putErr: errors.New("transport down")}
	svc := NewService(store)
	ctx := context.Background()

	user := ChatUser{UserID: "u123", Username: "alice"}
	err := svc.Save(ctx, user)

	var serr *SaveError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SaveError, got %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("local record must be unchanged after a failed save")
	}

	// The same record can be retried once the store recovers.
	store.putErr = nil
	if err := svc.Save(ctx, user); err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if len(store.Puts()) != 1 {
		t.Fatalf("expected one successful write after retry")
	}
}

func TestSaveRequiresUserID(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if err := svc.Save(context.Background(), ChatUser{Username: "alice"}); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("expected ErrIdentityMissing, got %v", err)
	}
}

func TestLoadUnsavedProfileDefaults(t *testing.T) {
	svc := NewService(NewMemoryStore())

	user, err := svc.Load(context.Background(), "u123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if user.UserID != "u123" || user.Username != "" {
		t.Fatalf("expected fresh record, got %+v", user)
	}
}
