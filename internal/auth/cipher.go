// ABOUTME: Authenticated encryption of session payloads with per-call scrypt keys
// ABOUTME: AES-256-GCM envelopes carrying ciphertext, salt, nonce, and tag

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for deriving the per-envelope AES key from the shared
// secret and a random salt.
const (
	scryptN      = 1 << 14
	scryptR      = 8
	scryptP      = 1
	cipherKeyLen = 32

	// envelopeSaltSize matches the AES block size
	envelopeSaltSize = aes.BlockSize
)

// DefaultKDFWorkers caps concurrent scrypt derivations when no explicit
// limit is configured. Key derivation takes tens of milliseconds of CPU,
// so an unbounded burst of logins would starve everything else.
const DefaultKDFWorkers = 8

// Envelope is the transportable result of authenticated encryption.
// The ciphertext travels to the client; salt, nonce, and tag are
// persisted server-side in the session row.
type Envelope struct {
	Ciphertext []byte
	Salt       []byte
	Nonce      []byte
	Tag        []byte
}

// Token returns the transport encoding of the ciphertext, the value the
// client holds in the token cookie.
func (e *Envelope) Token() string {
	return base64.StdEncoding.EncodeToString(e.Ciphertext)
}

// EncodedMeta returns the transport encodings of the envelope metadata,
// in the form they are persisted in the session row.
func (e *Envelope) EncodedMeta() (salt, nonce, tag string) {
	return base64.StdEncoding.EncodeToString(e.Salt),
		base64.StdEncoding.EncodeToString(e.Nonce),
		base64.StdEncoding.EncodeToString(e.Tag)
}

// DecodeEnvelope reconstructs an envelope from its transport encodings.
// Returns ErrDecryption if any field is not valid base64: malformed input
// is indistinguishable from tampering and fails closed the same way.
func DecodeEnvelope(token, salt, nonce, tag string) (*Envelope, error) {
	var env Envelope
	var err error
	for _, f := range []struct {
		name string
		dst  *[]byte
		src  string
	}{
		{"token", &env.Ciphertext, token},
		{"salt", &env.Salt, salt},
		{"nonce", &env.Nonce, nonce},
		{"tag", &env.Tag, tag},
	} {
		*f.dst, err = base64.StdEncoding.DecodeString(f.src)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed %s encoding", ErrDecryption, f.name)
		}
	}
	return &env, nil
}

// Cipher encrypts and decrypts session payloads. A fresh salt is drawn
// per encryption and an AES-256 key derived from it and the shared
// secret, so one compromised session key exposes neither the secret nor
// any other session. Safe for concurrent use.
type Cipher struct {
	secret []byte
	sem    chan struct{} // bounds concurrent scrypt derivations
}

// NewCipher creates a Cipher around the process-wide shared secret.
// maxWorkers caps concurrent key derivations; <= 0 uses DefaultKDFWorkers.
func NewCipher(secret string, maxWorkers int) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher secret must not be empty")
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultKDFWorkers
	}
	return &Cipher{
		secret: []byte(secret),
		sem:    make(chan struct{}, maxWorkers),
	}, nil
}

// Encrypt seals a plaintext into a fresh envelope.
func (c *Cipher) Encrypt(plaintext string) (*Envelope, error) {
	salt := make([]byte, envelopeSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	gcm, err := c.aeadFor(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	// Seal appends the GCM tag to the ciphertext; split it back out so
	// the tag can be persisted separately from the client-held ciphertext.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - gcm.Overhead()

	return &Envelope{
		Ciphertext: sealed[:tagStart],
		Salt:       salt,
		Nonce:      nonce,
		Tag:        sealed[tagStart:],
	}, nil
}

// Decrypt opens an envelope, re-deriving the key from the shared secret
// and the envelope's salt. Returns ErrDecryption on tag mismatch or any
// malformed field; no partial plaintext is ever returned.
func (c *Cipher) Decrypt(env *Envelope) (string, error) {
	gcm, err := c.aeadFor(env.Salt)
	if err != nil {
		return "", err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce size", ErrDecryption)
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := gcm.Open(nil, env.Nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: envelope verification failed", ErrDecryption)
	}
	return string(plaintext), nil
}

// aeadFor derives the AES-GCM context for the given salt, holding a
// semaphore slot for the duration of the scrypt call.
func (c *Cipher) aeadFor(salt []byte) (cipher.AEAD, error) {
	c.sem <- struct{}{}
	key, err := scrypt.Key(c.secret, salt, scryptN, scryptR, scryptP, cipherKeyLen)
	<-c.sem
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
