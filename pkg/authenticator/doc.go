// Package authenticator defines the contract for authentication modules.
//
// The service supports multiple authentication mechanisms. This package
// provides the common interface that all modules implement and the Result
// type they report through.
//
// # Authenticator Interface
//
// All modules implement the Authenticator interface:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, authcID, credential string) (Result, error)
//	}
//
// Rejection and failure travel on different channels. A module that examined
// the credentials and found them wrong returns a Result with Authenticated
// false. A module that could not do its job at all (its store was down, a
// stored value would not decrypt) returns a non-nil error. The chain treats
// the two differently only in logging; both move evaluation to the next
// module.
//
// # Built-in Modules
//
// The following modules are available in subpackages:
//
//   - resource: validates against objects in a repository resource
//     (managed and internal users) - see [idm-in-go/pkg/authenticator/resource]
//   - static: validates against a fixed username and password from module
//     properties - see [idm-in-go/pkg/authenticator/static]
//
// # Construction
//
// Modules are built by the auth.Factory from filtered module configuration,
// keyed by module kind. Constructors only wire collaborators; no module
// touches its backing store until evaluation time.
package authenticator
