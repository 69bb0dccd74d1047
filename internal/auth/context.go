// ABOUTME: Request identity propagation through context.Context
// ABOUTME: Provides WithIdentity/FromContext for handlers behind the auth gate

package auth

import (
	"context"

	"github.com/asbp/gatekeeper/internal/store"
)

// Identity holds the authenticated principal resolved by Validate.
// Populated by the middleware and retrieved from context in handlers.
type Identity struct {
	User    *store.SystemUser
	Scopes  []string // current role names from the database
	Session *store.Session
	Payload *Payload // decrypted token payload as issued at login
}

// HasScope returns true if the identity holds the named scope.
func (id *Identity) HasScope(scope string) bool {
	for _, s := range id.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}

// MustFromContext retrieves the Identity from the context, panicking if not
// present. Only for handlers that are always composed behind Protect.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
