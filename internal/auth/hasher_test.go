// ABOUTME: Tests for salted password hashing and verification
// ABOUTME: Covers round-trips, mismatches, and salt generation

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	digest, salt := HashPassword("123456")

	if !VerifyPassword("123456", digest, salt) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("123457", digest, salt) {
		t.Error("expected wrong password to fail verification")
	}
	if VerifyPassword("", digest, salt) {
		t.Error("expected empty password to fail verification")
	}
}

func TestHashPassword_WrongSalt(t *testing.T) {
	digest, _ := HashPassword("s3cret")

	if VerifyPassword("s3cret", digest, "WRONGSALT1") {
		t.Error("expected verification with wrong salt to fail")
	}
}

func TestHashPassword_SaltProperties(t *testing.T) {
	_, salt := HashPassword("password")

	if len(salt) != DefaultSaltLength {
		t.Errorf("expected salt length %d, got %d", DefaultSaltLength, len(salt))
	}
	for _, c := range salt {
		if !strings.ContainsRune(saltAlphabet, c) {
			t.Errorf("salt contains character %q outside the alphabet", c)
		}
	}
}

func TestHashPasswordSalted_CustomLength(t *testing.T) {
	digest, salt := HashPasswordSalted("password", 24)

	if len(salt) != 24 {
		t.Errorf("expected salt length 24, got %d", len(salt))
	}
	if len(digest) != 64 {
		t.Errorf("expected 64 hex chars of SHA-256, got %d", len(digest))
	}
	if !VerifyPassword("password", digest, salt) {
		t.Error("expected round-trip with custom salt length to verify")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	d1, s1 := HashPassword("same")
	d2, s2 := HashPassword("same")

	if s1 == s2 {
		t.Error("expected two hashes of the same password to use different salts")
	}
	if d1 == d2 {
		t.Error("expected different salts to produce different digests")
	}
}
