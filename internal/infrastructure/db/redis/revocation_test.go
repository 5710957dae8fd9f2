package redis

import (
	"context"
	"testing"
	"time"
)

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	rdb, mr := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh token: revoked=%v err=%v", revoked, err)
	}

	if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("after revoke: revoked=%v err=%v", revoked, err)
	}

	if ttl := mr.TTL("revoked:jti-1"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %s", ttl)
	}
}

func TestRevocationStore_EntryExpiresWithToken(t *testing.T) {
	rdb, mr := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-2", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-2")
	if err != nil || revoked {
		t.Fatalf("expected entry to expire: revoked=%v err=%v", revoked, err)
	}
}

func TestRevocationStore_SkipsExpiredAndEmpty(t *testing.T) {
	rdb, mr := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := store.Revoke(ctx, "", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke empty: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestRevocationStore_RedisDown(t *testing.T) {
	rdb, mr := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	mr.Close()

	if _, err := store.IsRevoked(context.Background(), "jti-3"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestRevocationStore_OutlivesExpiryByLeeway(t *testing.T) {
	rdb, mr := newTestClient(t)
	store := NewRevocationStore(rdb, 30*time.Second)
	ctx := context.Background()

	// The token expires in 2s but Verify accepts it for 30s more.
	if err := store.Revoke(ctx, "jti-lw", time.Now().Add(2*time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ttl := mr.TTL("revoked:jti-lw"); ttl <= 30*time.Second {
		t.Fatalf("expected ttl past expiry plus leeway, got %s", ttl)
	}

	mr.FastForward(3 * time.Second)
	revoked, err := store.IsRevoked(ctx, "jti-lw")
	if err != nil || !revoked {
		t.Fatalf("inside the leeway window: revoked=%v err=%v", revoked, err)
	}

	// Recently expired tokens are still inside the window and get an entry.
	if err := store.Revoke(ctx, "jti-late", time.Now().Add(-10*time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-late"); !revoked {
		t.Fatal("expected recently expired token to be revoked")
	}
}

func TestRevocationStore_RetireAfterGrace(t *testing.T) {
	rdb, _ := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	ctx := context.Background()
	t0 := time.Now()
	store.now = func() time.Time { return t0 }

	first, err := store.Retire(ctx, "jti-r", 30*time.Second, t0.Add(time.Hour))
	if err != nil || !first {
		t.Fatalf("first Retire: ok=%v err=%v", first, err)
	}
	again, err := store.Retire(ctx, "jti-r", 30*time.Second, t0.Add(time.Hour))
	if err != nil || again {
		t.Fatalf("second Retire must lose: ok=%v err=%v", again, err)
	}

	if revoked, _ := store.IsRevoked(ctx, "jti-r"); revoked {
		t.Fatal("retired token must stay valid during the grace period")
	}
	store.now = func() time.Time { return t0.Add(31 * time.Second) }
	if revoked, _ := store.IsRevoked(ctx, "jti-r"); !revoked {
		t.Fatal("retired token must be rejected after the grace period")
	}
}

func TestRevocationStore_RevokeOverridesGrace(t *testing.T) {
	rdb, _ := newTestClient(t)
	store := NewRevocationStore(rdb, 0)
	ctx := context.Background()
	until := time.Now().Add(time.Hour)

	if _, err := store.Retire(ctx, "jti-x", time.Minute, until); err != nil {
		t.Fatalf("Retire: %v", err)
	}
	if err := store.Revoke(ctx, "jti-x", until); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-x"); !revoked {
		t.Fatal("logout during the grace period must revoke at once")
	}
	if ok, _ := store.Retire(ctx, "jti-x", time.Minute, until); ok {
		t.Fatal("a revoked token cannot be retired")
	}
}
