package authenticator

import (
	"context"
)

// Authenticator validates a single credential pair against one backing
// source. Implementations are stateless with respect to requests and safe
// for concurrent use.
type Authenticator interface {
	// Name returns the module name (e.g., "MANAGED_USER", "STATIC_USER")
	Name() string

	// Authenticate validates the credential for the given authentication id.
	// A rejection is reported through the Result, not the error. A non-nil
	// error means the module itself failed (store unreachable, undecryptable
	// stored value) and says nothing about the credentials.
	Authenticate(ctx context.Context, authcID string, credential string) (Result, error)
}

// Result is the outcome of one authentication attempt.
type Result struct {
	// Authenticated reports whether the credentials were accepted.
	Authenticated bool

	// Module is the name of the module that produced the result. The chain
	// fills it in when the implementation leaves it blank.
	Module string

	// Attributes carries identity attributes resolved on success, such as
	// the matched object id, the component it lives on, and granted roles.
	Attributes map[string]interface{}

	// Reason is diagnostic detail on failure. It never contains the
	// credential value.
	Reason string
}

// Roles returns the granted roles from the result attributes, if any.
func (r Result) Roles() []string {
	roles, ok := r.Attributes["roles"].([]string)
	if !ok {
		return nil
	}
	return roles
}

// Success builds an accepted result carrying identity attributes.
func Success(attributes map[string]interface{}) Result {
	return Result{Authenticated: true, Attributes: attributes}
}

// Failure builds a rejected result. The reason is diagnostic only and must
// not contain the credential value.
func Failure(reason string) Result {
	return Result{Reason: reason}
}
