package authutil

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("kia-kaha-123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("unexpected hash format: %q", hash)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("kia-kaha-123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword("kia-kaha-123", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}
