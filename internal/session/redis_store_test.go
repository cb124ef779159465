package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndLookupSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveSession(ctx, "jti-1", "user-123", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	record, err := store.LookupSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("LookupSession failed: %v", err)
	}
	if record.UserID != "user-123" {
		t.Errorf("expected user ID user-123, got %s", record.UserID)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveSession(ctx, "jti-expiring", "user-456", time.Now().Add(time.Millisecond)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	s.FastForward(2 * time.Millisecond)

	if _, err := store.LookupSession(ctx, "jti-expiring"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSaveSessionRejectsPastExpiry(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if err := store.SaveSession(context.Background(), "jti-past", "user-1", time.Now().Add(-time.Minute)); err == nil {
		t.Fatalf("expected error for session expiring in the past")
	}
}

func TestRevokeSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	if err := store.SaveSession(ctx, "jti-2", "user-789", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if err := store.RevokeSession(ctx, "jti-2"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if _, err := store.LookupSession(ctx, "jti-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}
