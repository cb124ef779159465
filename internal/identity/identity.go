// Package identity resolves a verified requester identity from the
// ambient session credential. Resolution fails closed: a missing session,
// an unverifiable session, and a failed backend token exchange are all
// the same Unauthenticated outcome.
package identity

import (
	"context"
	"errors"

	"scribe/api/internal/auth"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified requester for one authorization request. It is
// never persisted; the authentication collaborator owns the source of
// truth.
type Identity struct {
	ID        string
	FullName  string
	FirstName string
	Username  string
	Email     string
	AvatarURL string
}

// Provider is the authentication collaborator consumed by the resolver.
type Provider interface {
	// VerifySession checks the ambient session credential and returns its
	// claims, or an error when absent or invalid.
	VerifySession(ctx context.Context, sessionToken string) (auth.Claims, error)
	// GetUser loads the identity record for a verified subject.
	GetUser(ctx context.Context, userID string) (Identity, error)
	// ExchangeToken mints a backend-scoped token from verified claims. The
	// scoped token is what authorizes the subsequent document lookup.
	ExchangeToken(ctx context.Context, claims auth.Claims, audience string) (string, error)
}

type Resolver struct {
	provider Provider
	audience string
}

func NewResolver(provider Provider, audience string) *Resolver {
	return &Resolver{provider: provider, audience: audience}
}

// Resolve verifies the session, loads the user record, and exchanges for a
// backend-scoped token. Any failure yields ErrUnauthenticated; callers
// must not learn which step failed.
func (r *Resolver) Resolve(ctx context.Context, sessionToken string) (Identity, string, error) {
	if sessionToken == "" {
		return Identity{}, "", ErrUnauthenticated
	}
	claims, err := r.provider.VerifySession(ctx, sessionToken)
	if err != nil {
		return Identity{}, "", ErrUnauthenticated
	}
	ident, err := r.provider.GetUser(ctx, claims.Sub)
	if err != nil {
		return Identity{}, "", ErrUnauthenticated
	}
	scoped, err := r.provider.ExchangeToken(ctx, claims, r.audience)
	if err != nil || scoped == "" {
		return Identity{}, "", ErrUnauthenticated
	}
	return ident, scoped, nil
}
