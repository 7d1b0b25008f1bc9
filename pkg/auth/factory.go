package auth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"idm-in-go/pkg/authenticator"
	"idm-in-go/pkg/authenticator/resource"
	"idm-in-go/pkg/authenticator/static"
)

// Built-in module kinds.
const (
	KindManagedUser  = "MANAGED_USER"
	KindInternalUser = "INTERNAL_USER"
	KindStaticUser   = "STATIC_USER"
)

// Constructor builds an authenticator for one module kind. Constructors only
// wire collaborators together; they perform no I/O.
type Constructor func(cfg ModuleConfig, deps Collaborators) (authenticator.Authenticator, error)

// Collaborators bundles the external services constructors may hand to the
// authenticators they build.
type Collaborators struct {
	Users     resource.Store
	Decryptor resource.Decryptor
}

// Factory builds authenticators from filtered module config entries. Kinds
// are looked up in a registry; additional kinds can be registered at any
// time.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	deps         Collaborators
}

// NewFactory creates a factory with the built-in kinds registered.
func NewFactory(users resource.Store, decryptor resource.Decryptor) *Factory {
	f := &Factory{
		constructors: make(map[string]Constructor),
		deps: Collaborators{
			Users:     users,
			Decryptor: decryptor,
		},
	}
	f.Register(KindManagedUser, newResourceAuthenticator)
	f.Register(KindInternalUser, newResourceAuthenticator)
	f.Register(KindStaticUser, newStaticAuthenticator)
	return f
}

// Register adds or replaces the constructor for a module kind.
func (f *Factory) Register(kind string, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[kind] = constructor
}

// Kinds returns the registered module kinds, sorted.
func (f *Factory) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]string, 0, len(f.constructors))
	for kind := range f.constructors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds the authenticator for one config entry. The entry should
// already have passed FilterModules.
func (f *Factory) New(cfg ModuleConfig) (authenticator.Authenticator, error) {
	f.mu.RLock()
	constructor, ok := f.constructors[cfg.Name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("module kind %q not registered", cfg.Name)
	}
	return constructor(cfg, f.deps)
}

func newResourceAuthenticator(cfg ModuleConfig, deps Collaborators) (authenticator.Authenticator, error) {
	props, err := cfg.DecodeProperties()
	if err != nil {
		return nil, err
	}
	return resource.New(resource.Config{
		Name:               cfg.Name,
		QueryOnResource:    props.QueryOnResource,
		QueryID:            props.QueryID,
		IDProperty:         props.PropertyMapping.AuthenticationID,
		CredentialProperty: props.PropertyMapping.UserCredential,
		RolesProperty:      props.PropertyMapping.UserRoles,
		DefaultRoles:       props.DefaultUserRoles,
	}, deps.Users, deps.Decryptor), nil
}

func newStaticAuthenticator(cfg ModuleConfig, deps Collaborators) (authenticator.Authenticator, error) {
	var props struct {
		QueryOnResource  string   `mapstructure:"queryOnResource"`
		Username         string   `mapstructure:"username"`
		Password         string   `mapstructure:"password"`
		DefaultUserRoles []string `mapstructure:"defaultUserRoles"`
	}
	if err := mapstructure.Decode(cfg.Properties, &props); err != nil {
		return nil, fmt.Errorf("module %q: decode properties: %w", cfg.Name, err)
	}
	if props.Username == "" || props.Password == "" {
		return nil, fmt.Errorf("module %q: username and password properties are required", cfg.Name)
	}
	return static.New(static.Config{
		Name:      cfg.Name,
		Component: props.QueryOnResource,
		Username:  props.Username,
		Password:  props.Password,
		Roles:     props.DefaultUserRoles,
	}), nil
}
