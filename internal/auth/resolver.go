// Package auth resolves the caller of a request from a server-side session or a signed token.
package auth

import (
	"context"
	"net/http"
	"strings"

	"freshmart/internal/model"

	"github.com/rs/zerolog"
)

// Cookie names shared by the login handler and the resolver.
const (
	SessionCookie = "session_id"
	TokenCookie   = "token"
)

// Resolver turns request credentials into an identity.
type Resolver struct {
	tokens   *TokenManager
	sessions SessionStore
	logger   zerolog.Logger
}

// NewResolver creates a Resolver. sessions may be nil when server-side sessions are disabled.
func NewResolver(tokens *TokenManager, sessions SessionStore, logger zerolog.Logger) *Resolver {
	return &Resolver{
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Resolve returns the caller of r. A session cookie is tried first, then a bearer
// token and finally the token cookie. Returns model.ErrUnauthenticated when none verifies.
func (res *Resolver) Resolve(ctx context.Context, r *http.Request) (model.Identity, error) {
	if res.sessions != nil {
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			identity, err := res.sessions.Get(ctx, c.Value)
			if err != nil {
				// A session store outage falls through to token auth.
				res.logger.Warn().Err(err).Msg("session lookup failed")
			} else if identity != nil {
				return *identity, nil
			}
		}
	}

	if raw := bearerToken(r); raw != "" {
		return res.verify(raw)
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return res.verify(c.Value)
	}
	return model.Identity{}, model.ErrUnauthenticated
}

func (res *Resolver) verify(raw string) (model.Identity, error) {
	identity, err := res.tokens.Verify(raw)
	if err != nil {
		res.logger.Debug().Err(err).Msg("token rejected")
		return model.Identity{}, model.ErrUnauthenticated
	}
	return identity, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	return identity, ok
}
