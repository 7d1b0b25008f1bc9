package endpoints

import (
	"testing"

	"github.com/stretchr/testify/require"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/config"
	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/store"
	"idm-in-go/pkg/session"
)

// testServer bundles the pieces endpoint tests drive directly.
type testServer struct {
	*server.Server
	sessions *session.Module
	service  *auth.Service
}

func testSessionKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

// staticModule builds a chain entry that accepts anonymous/anonymous
// without touching a store.
func staticModule() auth.ModuleConfig {
	return auth.ModuleConfig{
		Name: auth.KindStaticUser,
		Properties: map[string]interface{}{
			"queryOnResource":  "internal/user",
			"username":         "anonymous",
			"password":         "anonymous",
			"defaultUserRoles": []interface{}{"openidm-reg"},
		},
	}
}

// newTestServer wires a server around an activated chain, a session module,
// and the given stores. No database and no listener are involved; tests
// drive the router directly.
func newTestServer(t *testing.T, modules []auth.ModuleConfig, users store.UserStore, health store.HealthStore) *testServer {
	t.Helper()

	sessions, err := session.NewModule(testSessionKey())
	require.NoError(t, err)

	factory := auth.NewFactory(users, nil)
	service := auth.NewService(factory)
	service.Activate(modules)

	cfg := &config.ServerConfig{ListenAddress: "127.0.0.1:0"}
	srv := server.NewServer(service, sessions, users, health, cfg, nil)
	RegisterAll(srv)

	return &testServer{Server: srv, sessions: sessions, service: service}
}
