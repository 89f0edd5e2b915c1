package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct-horse-battery", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: 24 * time.Hour}

	token, err := GenerateToken(cfg, "usr-abc123", "CS-2021-001", "student")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "usr-abc123" {
		t.Errorf("Subject = %q, want usr-abc123", claims.Subject)
	}
	if claims.StudentID != "CS-2021-001" {
		t.Errorf("StudentID = %q, want CS-2021-001", claims.StudentID)
	}
	if claims.Role != "student" {
		t.Errorf("Role = %q, want student", claims.Role)
	}

	ttl := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if ttl != 24*time.Hour {
		t.Errorf("token TTL = %v, want 24h", ttl)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	cfg := Config{JWTSecret: "secret-a", TokenTTL: time.Hour}
	token, err := GenerateToken(cfg, "usr-1", "S-1", "student")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	other := Config{JWTSecret: "secret-b", TokenTTL: time.Hour}
	if _, err := ParseToken(other, token); err == nil {
		t.Error("token signed with different secret was accepted")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: -time.Minute}
	token, err := GenerateToken(cfg, "usr-1", "S-1", "student")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(cfg, token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	if _, err := ParseToken(cfg, "not.a.token"); err == nil {
		t.Error("garbage token was accepted")
	}
}
