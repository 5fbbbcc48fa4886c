package services

import (
	"context"
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewAuthService()

	token, err := svc.CreateJWT(42)
	if err != nil {
		t.Fatalf("create jwt: %v", err)
	}

	userID, err := svc.VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify jwt: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestVerifyJWT_Garbage(t *testing.T) {
	svc := NewAuthService()

	if _, err := svc.VerifyJWT("not-a-token"); err == nil {
		t.Fatal("expected error for a malformed token")
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Register(ctx, "Alice@Example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password must not be stored in the clear")
	}

	// Duplicate email conflicts, case-insensitively.
	_, err = env.users.Register(ctx, "alice@example.com", "Alice 2", "another pass")
	wantKind(t, err, KindConflict)

	got, err := env.users.Authenticate(ctx, "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}

	_, err = env.users.Authenticate(ctx, "alice@example.com", "wrong pass")
	wantKind(t, err, KindUnauthorized)
	_, err = env.users.Authenticate(ctx, "nobody@example.com", "whatever")
	wantKind(t, err, KindUnauthorized)
}
