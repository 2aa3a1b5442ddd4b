package auth

import (
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

var testUser = model.User{ID: 1, Name: "Ana", Email: "ana@campus.edu", Role: model.RoleUser}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, testUser, TokenExpiry)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected userId 1, got %d", claims.UserID)
	}
	if claims.Name != "Ana" {
		t.Errorf("expected name 'Ana', got %q", claims.Name)
	}
	if claims.Role != model.RoleUser {
		t.Errorf("expected role USER, got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", testUser, TokenExpiry)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseClaimsWithoutSecret(t *testing.T) {
	token, _ := GenerateToken("server-only", testUser, TokenExpiry)

	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	u := claims.User()
	if u.ID != testUser.ID || u.Email != testUser.Email {
		t.Errorf("unexpected user from claims: %+v", u)
	}
	if claims.Expired(time.Now()) {
		t.Error("fresh token must not be expired")
	}
	if !claims.Expired(time.Now().Add(TokenExpiry + time.Minute)) {
		t.Error("token must be expired after its lifetime")
	}
}

func TestParseClaimsInvalid(t *testing.T) {
	if _, err := ParseClaims("not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}
