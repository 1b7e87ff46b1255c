package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tokens := newTestTokens()
	p := testPrincipal(RoleMedic)

	token, err := tokens.IssueAccess(p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := tokens.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
}

func TestTokenManager_RefreshIsNotAnAccessToken(t *testing.T) {
	tokens := newTestTokens()
	refresh, jti, err := tokens.IssueRefresh(testPrincipal(RoleAdmin))
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if jti == "" {
		t.Fatal("expected non-empty jti")
	}
	if _, err := tokens.ParseAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken using refresh as access, got %v", err)
	}
	claims, err := tokens.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.ID != jti {
		t.Fatalf("expected jti %q, got %q", jti, claims.ID)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tokens := newTestTokens()
	issued := time.Now().Add(-48 * time.Hour)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.IssueAccess(testPrincipal(RoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens.now = time.Now
	if _, err := tokens.ParseAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "battery staple") {
		t.Fatal("expected mismatch for wrong password")
	}
	if CheckPassword("not-a-bcrypt-hash", "correct horse") {
		t.Fatal("expected mismatch for malformed hash")
	}
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	userID := uuid.New()
	id := NewTokenID()

	if err := store.Put(ctx, KindPasswordReset, id, userID, time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Lookup(ctx, KindRefresh, id); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("kinds must not overlap, got %v", err)
	}

	got, err := store.Consume(ctx, KindPasswordReset, id)
	if err != nil || got != userID {
		t.Fatalf("consume: got %v, %v", got, err)
	}
	if _, err := store.Consume(ctx, KindPasswordReset, id); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("second consume must fail, got %v", err)
	}
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	start := time.Now()
	store.now = func() time.Time { return start }

	id := NewTokenID()
	_ = store.Put(ctx, KindRefresh, id, uuid.New(), time.Minute)

	store.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := store.Lookup(ctx, KindRefresh, id); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected expired token to be gone, got %v", err)
	}
}
