// Package session issues and validates the stateless session tokens
// returned after a successful authentication or reauthentication.
//
// A session token is an HMAC-signed JWT carrying the authenticated
// identity. Clients present it on subsequent requests instead of their
// credentials, so the authentication chain only runs when a token is
// absent or no longer valid.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"idm-in-go/pkg/security"
)

const (
	// DefaultTTL is the session lifetime used when none is configured.
	DefaultTTL = 30 * time.Minute

	// DefaultIssuer is recorded in the iss claim of issued tokens.
	DefaultIssuer = "idm"
)

// ErrInvalidSession wraps any validation failure, so callers can treat
// expired, tampered, and malformed tokens uniformly.
var ErrInvalidSession = errors.New("invalid session token")

// Claims is the payload of a session token.
type Claims struct {
	Module     string                 `json:"module,omitempty"`
	Roles      []string               `json:"roles,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	jwt.RegisteredClaims
}

// Token is an issued session token along with the metadata recorded in it.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Module signs and verifies session tokens with a shared HMAC key.
type Module struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

// Option configures optional Module behaviour.
type Option func(*Module)

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Module) {
		m.ttl = ttl
	}
}

// WithIssuer overrides the iss claim recorded in issued tokens.
func WithIssuer(issuer string) Option {
	return func(m *Module) {
		m.issuer = issuer
	}
}

// NewModule builds a session module around the given signing key.
func NewModule(key []byte, opts ...Option) (*Module, error) {
	if len(key) == 0 {
		return nil, errors.New("session signing key is required")
	}

	m := &Module{key: key, ttl: DefaultTTL, issuer: DefaultIssuer}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a fresh session token for an authenticated identity.
func (m *Module) Issue(identity *security.Identity) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Module:     identity.Module,
		Roles:      identity.Roles,
		Attributes: identity.Attributes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AuthenticationID,
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &Token{Value: value, ID: claims.ID, ExpiresAt: expiresAt}, nil
}

// Validate verifies a session token and reconstructs the identity it
// carries. Expired, tampered, and foreign tokens all fail with an error
// wrapping ErrInvalidSession.
func (m *Module) Validate(tokenString string) (*security.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	identity := security.NewIdentity(claims.Subject).
		WithModule(claims.Module).
		WithRoles(claims.Roles).
		WithAttributes(claims.Attributes)
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	identity.ExpiresAt = claims.ExpiresAt.Time

	return identity, nil
}
