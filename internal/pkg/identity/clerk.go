// Package identity verifies Clerk session tokens via the instance JWKS
// endpoint and authenticates inbound Clerk webhooks.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yonderlust/yonderlust/internal/pkg/env"
)

const sessionLeeway = 30 * time.Second

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionClaims are the claims the app reads from a verified Clerk
// session token. Subject is the Clerk user ID.
type SessionClaims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
}

// Verifier validates Clerk session JWTs. Keys are fetched from the
// instance JWKS endpoint and refreshed in the background by keyfunc.
type Verifier struct {
	issuer  string
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
}

// NewVerifierFromEnv initializes a verifier from CLERK_ISSUER, with an
// optional CLERK_JWKS_URL override for tests and proxied setups.
func NewVerifierFromEnv() (*Verifier, error) {
	return NewVerifier(env.GetEnv("CLERK_ISSUER", ""), env.GetEnv("CLERK_JWKS_URL", ""))
}

// NewVerifier builds a verifier for one Clerk instance.
func NewVerifier(issuer, jwksURL string) (*Verifier, error) {
	issuer = strings.TrimSuffix(strings.TrimSpace(issuer), "/")
	if issuer == "" {
		return nil, errors.New("CLERK_ISSUER must be set")
	}
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("init JWKS keyfunc: %w", err)
	}

	parser := jwt.NewParser(
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(sessionLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
	)

	return &Verifier{issuer: issuer, keyfunc: keyProvider, parser: parser}, nil
}

// VerifySessionToken parses and validates a session token and returns its
// claims. Any parse or validation failure maps to ErrInvalidToken so the
// caller never leaks verification detail to the client.
func (v *Verifier) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, ErrInvalidToken
	}

	out := &SessionClaims{Subject: sub, Issuer: v.issuer}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
