// Package auth provides authentication and authorization for gatekeeper.
//
// # Credentials
//
// Stored passwords are one-way hashed: SHA-256 over password||salt with a
// random alphanumeric salt per account, hex-encoded. Verification is
// constant-time. See HashPassword and VerifyPassword.
//
// # Session tokens
//
// A successful login serializes the user's identity and scopes to JSON
// and seals it with AES-256-GCM under a key derived per-envelope from
// the process-wide secret and a random salt using scrypt (N=2^14, r=8,
// p=1, 32-byte key). The client holds the base64 ciphertext in the token
// cookie; salt, nonce, and tag are persisted in the session row. Neither
// side alone can reconstruct the payload.
//
// # Session lifecycle
//
//	Issued -> Valid -> (Expired | Revoked)
//
// Expiry is lazy: expired rows are rejected at validation, never swept
// here. Both terminal states are final; a new login issues a new session.
//
// # Route protection
//
// Handlers compose with Protect:
//
//	mux.Handle("/users", auth.Protect(svc, "root", "admin")(handler))
//
// which parses the cookie triple, validates the session against the
// persisted expiry, decrypts and verifies the token, checks scopes, and
// attaches the resolved Identity to the request context.
package auth
