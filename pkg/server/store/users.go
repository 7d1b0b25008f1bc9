package store

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by updates against a missing user.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when creating a user whose id is taken.
var ErrUserExists = errors.New("user already exists")

// ErrUnknownQuery is returned for query ids the store has no definition
// for. A module configured with an unknown query id faults on every
// evaluation; it never matches by accident.
var ErrUnknownQuery = errors.New("unknown query id")

// Named queries understood by the user store.
const (
	// QueryCredential locates a user by matching the query parameters
	// against the properties document.
	QueryCredential = "credential-query"

	// QueryCredentialInternalUser locates an internal user by matching the
	// single query parameter against the object id.
	QueryCredentialInternalUser = "credential-internaluser-query"
)

// UserStore abstracts user object storage. Query and Read carry the
// contract the authentication modules rely on: Read returns nil with no
// error for a missing object, and Query returns however many objects
// matched.
type UserStore interface {
	// Query runs a named query on a resource and returns the matching
	// objects. Each object carries its properties plus _id and _rev.
	Query(ctx context.Context, resource string, queryID string, params map[string]string) ([]map[string]interface{}, error)

	// Read fetches a single object by id. It returns nil with no error
	// when the object does not exist.
	Read(ctx context.Context, resource string, id string) (map[string]interface{}, error)

	// Create stores a new user object.
	Create(ctx context.Context, resource string, id string, properties map[string]interface{}) error

	// UpdateProperties merges updates into an existing object's properties.
	// A nil update value removes the property.
	UpdateProperties(ctx context.Context, resource string, id string, updates map[string]interface{}) error
}
