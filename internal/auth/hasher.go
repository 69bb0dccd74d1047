// ABOUTME: One-way salted password hashing for stored credentials
// ABOUTME: SHA-256 over password||salt with a random alphanumeric salt

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DefaultSaltLength is the length of generated password salts.
const DefaultSaltLength = 10

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashPassword hashes a password with a fresh random salt of the default
// length. Returns the hex-encoded digest and the salt, both of which are
// persisted with the user.
func HashPassword(password string) (digest, salt string) {
	return HashPasswordSalted(password, DefaultSaltLength)
}

// HashPasswordSalted hashes a password with a fresh random salt of the
// given length.
func HashPasswordSalted(password string, saltLen int) (digest, salt string) {
	salt = randomSalt(saltLen)
	return digestFor(password, salt), salt
}

// VerifyPassword recomputes the digest for the supplied password and salt
// and compares it against the stored digest in constant time.
func VerifyPassword(password, storedDigest, salt string) bool {
	computed := digestFor(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}

func digestFor(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func randomSalt(n int) string {
	if n <= 0 {
		n = DefaultSaltLength
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic("auth: reading random salt: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(buf)
}
