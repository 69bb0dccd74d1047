// ABOUTME: Tests for the session cipher and envelope transport encoding
// ABOUTME: Covers round-trips, tampering, wrong secrets, and malformed input

package auth

import (
	"errors"
	"testing"
)

func newTestCipher(t *testing.T, secret string) *Cipher {
	t.Helper()
	c, err := NewCipher(secret, 2)
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}
	return c
}

func TestNewCipher_EmptySecret(t *testing.T) {
	if _, err := NewCipher("", 0); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	plaintext := `{"user_id":1,"username":"root","scopes":["root","admin"]}`
	env, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if len(env.Salt) != envelopeSaltSize {
		t.Errorf("expected %d-byte salt, got %d", envelopeSaltSize, len(env.Salt))
	}

	got, err := c.Decrypt(env)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != plaintext {
		t.Errorf("expected plaintext %q, got %q", plaintext, got)
	}
}

func TestCipher_FreshSaltPerEncryption(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	e1, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	e2, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if string(e1.Salt) == string(e2.Salt) {
		t.Error("expected a fresh salt per encryption")
	}
	if string(e1.Ciphertext) == string(e2.Ciphertext) {
		t.Error("expected different ciphertexts for the same plaintext")
	}
}

func TestCipher_WrongSecret(t *testing.T) {
	c1 := newTestCipher(t, "secret-one")
	c2 := newTestCipher(t, "secret-two")

	env, err := c1.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := c2.Decrypt(env); !errors.Is(err, ErrDecryption) {
		t.Errorf("expected ErrDecryption with wrong secret, got %v", err)
	}
}

func TestCipher_TamperedCiphertext(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	env, err := c.Encrypt("payload that must not survive tampering")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	env.Ciphertext[0] ^= 0x01
	if _, err := c.Decrypt(env); !errors.Is(err, ErrDecryption) {
		t.Errorf("expected ErrDecryption for tampered ciphertext, got %v", err)
	}
}

func TestCipher_TamperedTag(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	env, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	env.Tag[len(env.Tag)-1] ^= 0x80
	if _, err := c.Decrypt(env); !errors.Is(err, ErrDecryption) {
		t.Errorf("expected ErrDecryption for tampered tag, got %v", err)
	}
}

func TestCipher_BadNonceSize(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	env, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	env.Nonce = env.Nonce[:len(env.Nonce)-1]
	if _, err := c.Decrypt(env); !errors.Is(err, ErrDecryption) {
		t.Errorf("expected ErrDecryption for truncated nonce, got %v", err)
	}
}

func TestEnvelope_TransportRoundTrip(t *testing.T) {
	c := newTestCipher(t, "a-long-shared-secret")

	env, err := c.Encrypt("payload")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	salt, nonce, tag := env.EncodedMeta()
	decoded, err := DecodeEnvelope(env.Token(), salt, nonce, tag)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}

	got, err := c.Decrypt(decoded)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if got != "payload" {
		t.Errorf("expected plaintext %q, got %q", "payload", got)
	}
}

func TestDecodeEnvelope_MalformedBase64(t *testing.T) {
	if _, err := DecodeEnvelope("not base64!!", "AAAA", "AAAA", "AAAA"); !errors.Is(err, ErrDecryption) {
		t.Errorf("expected ErrDecryption for malformed token encoding, got %v", err)
	}
}
