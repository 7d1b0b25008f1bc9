package security

import (
	"context"
	"net/http"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// IdentityKey is the context key for Identity.
	IdentityKey ContextKey = "securityIdentity"

	// TransportKey is the context key for Transport.
	TransportKey ContextKey = "securityTransport"
)

// Request headers understood by the authentication service.
const (
	// HeaderUsername and HeaderPassword carry primary authentication
	// credentials when no session token is presented.
	HeaderUsername = "X-IDM-Username"
	HeaderPassword = "X-IDM-Password"

	// HeaderReauthPassword carries the credential for the reauthenticate
	// action.
	HeaderReauthPassword = "X-IDM-Reauth-Password"

	// HeaderSession carries a freshly issued session token on responses.
	HeaderSession = "X-IDM-Session"
)

// Identity is the authenticated subject of a request. It combines the
// authentication id with the authorization attributes the winning module
// resolved.
type Identity struct {
	// AuthenticationID is the id the subject authenticated as.
	AuthenticationID string

	// Module is the name of the module that authenticated the subject.
	Module string

	// Roles granted to the subject.
	Roles []string

	// Attributes are the remaining authorization attributes (object id,
	// component, and anything module-specific).
	Attributes map[string]interface{}

	// Session token validity window, when the identity came from a session.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewIdentity creates an Identity for an authentication id.
func NewIdentity(authcID string) *Identity {
	return &Identity{AuthenticationID: authcID}
}

// WithModule sets the authenticating module name.
func (i *Identity) WithModule(module string) *Identity {
	i.Module = module
	return i
}

// WithRoles sets the granted roles.
func (i *Identity) WithRoles(roles []string) *Identity {
	i.Roles = roles
	return i
}

// WithAttributes sets the authorization attributes.
func (i *Identity) WithAttributes(attributes map[string]interface{}) *Identity {
	i.Attributes = attributes
	return i
}

// HasRole reports whether the subject holds the given role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Transport captures the transport-level details of a request that the
// authentication service reads: a snapshot of the headers and the client
// address. It carries no body and no parsed credentials.
type Transport struct {
	Header     http.Header
	RemoteAddr string
}

// NewTransport snapshots the transport details of an HTTP request.
func NewTransport(r *http.Request) *Transport {
	return &Transport{
		Header:     r.Header.Clone(),
		RemoteAddr: r.RemoteAddr,
	}
}

// GetIdentity retrieves the Identity from context.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*Identity)
	return id, ok
}

// SetIdentity stores the Identity in context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetTransport retrieves the Transport from context.
func GetTransport(ctx context.Context) (*Transport, bool) {
	t, ok := ctx.Value(TransportKey).(*Transport)
	return t, ok
}

// SetTransport stores the Transport in context.
func SetTransport(ctx context.Context, t *Transport) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
