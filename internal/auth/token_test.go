package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{Sub: "user-1", Name: "Avery", JTI: "jti-1", Exp: time.Now().Add(time.Hour).Unix()}

	token, err := IssueToken(secret, claims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed.Sub != "user-1" || parsed.Name != "Avery" || parsed.JTI != "jti-1" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseTokenRejectsTamperedSignature(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken(secret, Claims{Sub: "user-1", JTI: "jti-1", Exp: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := ParseToken([]byte("other-secret"), token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := IssueToken(secret, Claims{Sub: "user-1", JTI: "jti-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := ParseToken(secret, token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseScopedTokenRequiresAudience(t *testing.T) {
	secret := []byte("test-secret")
	exp := time.Now().Add(time.Minute).Unix()

	scoped, err := IssueToken(secret, Claims{Sub: "user-1", Aud: "storage", JTI: "jti-1", Exp: exp})
	if err != nil {
		t.Fatalf("issue scoped token: %v", err)
	}
	if _, err := ParseScopedToken(secret, scoped, "storage"); err != nil {
		t.Fatalf("expected scoped token to verify, got %v", err)
	}

	session, err := IssueToken(secret, Claims{Sub: "user-1", JTI: "jti-2", Exp: exp})
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}
	if _, err := ParseScopedToken(secret, session, "storage"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for missing audience, got %v", err)
	}
}
