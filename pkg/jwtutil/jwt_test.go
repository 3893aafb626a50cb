package jwtutil

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})

	token, err := util.GenerateTokenWithRole("owner@example.com", "user-1", "store_owner")
	if err != nil {
		t.Fatalf("GenerateTokenWithRole returned error: %v", err)
	}

	claims, err := util.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id: got %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
	if claims.Role != "store_owner" {
		t.Errorf("role: got %q", claims.Role)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	other := NewJWTUtil(&JWTConfig{SigningKey: "key-b", ExpirationHours: 1})

	token, err := util.GenerateToken("owner@example.com", "user-1")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different signing key")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})

	if _, err := util.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected validation to fail for malformed token")
	}
}
