package auth

import (
	"context"

	"github.com/keebmart/keebmart/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityKey is the context key for storing the verified Identity.
	identityKey contextKey = "identity"
)

// ContextWithIdentity adds the verified Identity to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if the request was not authenticated.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only behind the auth middleware).
func MustIdentityFromContext(ctx context.Context) *model.Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("identity not found - ensure auth middleware is applied")
	}
	return id
}
