package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/courseloop/courseloop/internal/shared"
	"github.com/courseloop/courseloop/internal/token"
)

// Verifier decodes a raw credential into its claims.
type Verifier interface {
	Verify(raw string) (token.Claims, error)
}

// IdentityStore looks up the current principal for an identity id.
// Implementations return shared.ErrNotFound for deleted or stale
// accounts; any other error is treated as an infrastructure fault.
type IdentityStore interface {
	FindPrincipal(ctx context.Context, id int64) (Principal, error)
}

// Resolver turns an inbound credential (or its absence) into a
// principal. The credential authenticates identity only; the store is
// authoritative for the role, so a role change takes effect on the
// next resolved request even while the old token is still unexpired.
type Resolver struct {
	tokens Verifier
	store  IdentityStore
}

// NewResolver constructs a Resolver.
func NewResolver(tokens Verifier, store IdentityStore) *Resolver {
	return &Resolver{tokens: tokens, store: store}
}

// Resolve maps a raw credential to a principal. With allowGuest set, a
// missing, expired, tampered or stale credential degrades to the guest
// sentinel; without it those cases surface as shared.ErrUnauthenticated
// or shared.ErrAuthInvalid. An infrastructure fault during the store
// lookup always surfaces as shared.ErrLookupFailed, regardless of
// allowGuest, so outages are never masked as guest traffic.
func (r *Resolver) Resolve(ctx context.Context, raw string, allowGuest bool) (Principal, error) {
	if raw == "" {
		if allowGuest {
			return Guest(), nil
		}
		return Principal{}, shared.ErrUnauthenticated
	}

	claims, err := r.tokens.Verify(raw)
	if err != nil {
		if allowGuest {
			return Guest(), nil
		}
		return Principal{}, shared.ErrAuthInvalid
	}

	principal, err := r.store.FindPrincipal(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if allowGuest {
				return Guest(), nil
			}
			return Principal{}, shared.ErrAuthInvalid
		}
		return Principal{}, fmt.Errorf("%w: %w", shared.ErrLookupFailed, err)
	}
	return principal, nil
}
