package static

import (
	"context"
	"crypto/subtle"

	"idm-in-go/pkg/authenticator"
)

// Config holds the fixed credentials the module accepts.
type Config struct {
	// Name is the module name reported in results and logs.
	Name string

	// Component is reported as the authenticated subject's component,
	// typically the queryOnResource of the module config.
	Component string

	Username string
	Password string

	// Roles granted to the subject on success.
	Roles []string
}

// Authenticator accepts exactly one username and password pair taken from
// module properties. It exists for bootstrap and service accounts; it never
// touches a store.
type Authenticator struct {
	config Config
}

var _ authenticator.Authenticator = (*Authenticator)(nil)

// New creates a static authenticator.
func New(config Config) *Authenticator {
	return &Authenticator{config: config}
}

// Name returns the module name
func (a *Authenticator) Name() string {
	return a.config.Name
}

// Authenticate compares both values in constant time.
func (a *Authenticator) Authenticate(ctx context.Context, authcID string, credential string) (authenticator.Result, error) {
	idOK := subtle.ConstantTimeCompare([]byte(authcID), []byte(a.config.Username)) == 1
	credentialOK := subtle.ConstantTimeCompare([]byte(credential), []byte(a.config.Password)) == 1
	if !idOK || !credentialOK {
		return authenticator.Failure("credential mismatch for " + authcID), nil
	}

	attrs := map[string]interface{}{
		"id":        a.config.Username,
		"component": a.config.Component,
	}
	if len(a.config.Roles) > 0 {
		attrs["roles"] = a.config.Roles
	}
	return authenticator.Success(attrs), nil
}
