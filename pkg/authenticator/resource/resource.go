package resource

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"idm-in-go/pkg/authenticator"
)

// Default object properties when no property mapping is configured.
const (
	DefaultCredentialProperty = "password"
	DefaultIDProperty         = "_id"
)

// Store is the slice of the user repository this module needs.
type Store interface {
	// Query runs a named query on a resource and returns the matching
	// objects' properties.
	Query(ctx context.Context, resource string, queryID string, params map[string]string) ([]map[string]interface{}, error)

	// Read fetches a single object by id. It returns nil with no error when
	// the object does not exist.
	Read(ctx context.Context, resource string, id string) (map[string]interface{}, error)
}

// Decryptor recognizes and unwraps protected property values.
type Decryptor interface {
	IsEncrypted(value interface{}) bool
	DecryptField(value interface{}) (string, error)
}

// Config selects which objects the module validates against and which of
// their properties it reads.
type Config struct {
	// Name is the module name reported in results and logs.
	Name string

	// QueryOnResource is the repository resource holding the candidate
	// objects, e.g. "managed/user".
	QueryOnResource string

	// QueryID names the stored query used to locate the object. When empty
	// the module reads the object directly by its id.
	QueryID string

	// IDProperty is the object property holding the authentication id.
	// Used as the query parameter name. Defaults to "_id".
	IDProperty string

	// CredentialProperty is the object property holding the stored
	// credential. Defaults to "password".
	CredentialProperty string

	// RolesProperty optionally names the property holding granted roles.
	RolesProperty string

	// DefaultRoles are granted when the object stores none.
	DefaultRoles []string
}

// Authenticator validates credentials against objects held in a repository
// resource. Stored credentials may be plaintext, bcrypt hashes, or values
// protected by the field-level crypto service.
type Authenticator struct {
	config    Config
	store     Store
	decryptor Decryptor
}

var _ authenticator.Authenticator = (*Authenticator)(nil)

// New creates a repository-backed authenticator. The decryptor may be nil
// when stored credentials are never crypto-protected.
func New(config Config, store Store, decryptor Decryptor) *Authenticator {
	if config.IDProperty == "" {
		config.IDProperty = DefaultIDProperty
	}
	if config.CredentialProperty == "" {
		config.CredentialProperty = DefaultCredentialProperty
	}
	return &Authenticator{
		config:    config,
		store:     store,
		decryptor: decryptor,
	}
}

// Name returns the module name
func (a *Authenticator) Name() string {
	return a.config.Name
}

// Authenticate locates the object for authcID and compares its stored
// credential with the presented one.
func (a *Authenticator) Authenticate(ctx context.Context, authcID string, credential string) (authenticator.Result, error) {
	object, err := a.lookup(ctx, authcID)
	if err != nil {
		return authenticator.Result{}, err
	}
	if object == nil {
		return authenticator.Failure(fmt.Sprintf("no object for %s on %s", authcID, a.config.QueryOnResource)), nil
	}

	stored, present := object[a.config.CredentialProperty]
	if !present || stored == nil {
		return authenticator.Failure(fmt.Sprintf("object for %s has no stored credential", authcID)), nil
	}

	ok, err := a.compare(stored, credential)
	if err != nil {
		return authenticator.Result{}, err
	}
	if !ok {
		return authenticator.Failure(fmt.Sprintf("credential mismatch for %s", authcID)), nil
	}

	return authenticator.Success(a.attributes(authcID, object)), nil
}

func (a *Authenticator) lookup(ctx context.Context, authcID string) (map[string]interface{}, error) {
	if a.config.QueryID == "" {
		return a.store.Read(ctx, a.config.QueryOnResource, authcID)
	}

	params := map[string]string{a.config.IDProperty: authcID}
	objects, err := a.store.Query(ctx, a.config.QueryOnResource, a.config.QueryID, params)
	if err != nil {
		return nil, fmt.Errorf("query %s on %s: %w", a.config.QueryID, a.config.QueryOnResource, err)
	}
	switch len(objects) {
	case 0:
		return nil, nil
	case 1:
		return objects[0], nil
	default:
		return nil, fmt.Errorf("query %s on %s matched %d objects for %s", a.config.QueryID, a.config.QueryOnResource, len(objects), authcID)
	}
}

// compare never returns the stored or presented credential in its error.
func (a *Authenticator) compare(stored interface{}, credential string) (bool, error) {
	if a.decryptor != nil && a.decryptor.IsEncrypted(stored) {
		plaintext, err := a.decryptor.DecryptField(stored)
		if err != nil {
			return false, fmt.Errorf("decrypt stored credential: %w", err)
		}
		return constantTimeEqual(plaintext, credential), nil
	}

	value, ok := stored.(string)
	if !ok {
		return false, fmt.Errorf("stored credential has unexpected type %T", stored)
	}
	if isBcryptHash(value) {
		return bcrypt.CompareHashAndPassword([]byte(value), []byte(credential)) == nil, nil
	}
	return constantTimeEqual(value, credential), nil
}

func (a *Authenticator) attributes(authcID string, object map[string]interface{}) map[string]interface{} {
	attrs := map[string]interface{}{
		"component": a.config.QueryOnResource,
	}
	if id, ok := object[DefaultIDProperty]; ok {
		attrs["id"] = id
	} else {
		attrs["id"] = authcID
	}
	if roles := a.roles(object); len(roles) > 0 {
		attrs["roles"] = roles
	}
	return attrs
}

func (a *Authenticator) roles(object map[string]interface{}) []string {
	if a.config.RolesProperty != "" {
		switch v := object[a.config.RolesProperty].(type) {
		case []string:
			return v
		case []interface{}:
			roles := make([]string, 0, len(v))
			for _, role := range v {
				if s, ok := role.(string); ok {
					roles = append(roles, s)
				}
			}
			return roles
		case string:
			return strings.Split(v, ",")
		}
	}
	return a.config.DefaultRoles
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
