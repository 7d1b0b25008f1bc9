package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/config"
	"idm-in-go/pkg/crypto"
	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/endpoints"
	storegorm "idm-in-go/pkg/server/store/gorm"
	"idm-in-go/pkg/session"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

// staticOnlyDoc runs a chain with just the anonymous static module.
const staticOnlyDoc = `{
    "serverAuthContext": {
        "sessionModule": {"name": "JWT_SESSION"},
        "authModules": [
            {
                "name": "STATIC_USER",
                "properties": {
                    "queryOnResource": "internal/user",
                    "username": "anonymous",
                    "password": "anonymous",
                    "defaultUserRoles": ["openidm-reg"]
                }
            }
        ]
    }
}`

// staticPlusInternalDoc adds the internal user module ahead of the static one.
const staticPlusInternalDoc = `{
    "serverAuthContext": {
        "sessionModule": {"name": "JWT_SESSION"},
        "authModules": [
            {
                "name": "INTERNAL_USER",
                "properties": {
                    "queryOnResource": "internal/user",
                    "queryId": "credential-internaluser-query",
                    "propertyMapping": {
                        "authenticationId": "username",
                        "userCredential": "password"
                    },
                    "defaultUserRoles": ["openidm-admin"]
                }
            },
            {
                "name": "STATIC_USER",
                "properties": {
                    "queryOnResource": "internal/user",
                    "username": "anonymous",
                    "password": "anonymous",
                    "defaultUserRoles": ["openidm-reg"]
                }
            }
        ]
    }
}`

// ServerInstance is an in-process server dedicated to a single scenario.
// It runs the config watcher on its own authentication document, so the
// scenario can rewrite the document and observe the chain re-activate
// without disturbing the shared server.
type ServerInstance struct {
	Server         *server.Server
	ServerURL      string
	Port           int
	AuthConfigFile string
	cancel         context.CancelFunc
}

// NewServerInstance starts a dedicated server with the given
// authentication document and waits for it to become ready.
func NewServerInstance(tc *TestContext, authDoc string) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	dir, err := os.MkdirTemp("", "idm-server-instance")
	if err != nil {
		return nil, err
	}
	authConfigFile := filepath.Join(dir, "authentication.json")
	if err := os.WriteFile(authConfigFile, []byte(authDoc), 0o600); err != nil {
		return nil, err
	}

	doc, err := config.ParseAuthentication([]byte(authDoc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse authentication document: %w", err)
	}

	sessions, err := session.NewModule(tc.DataKey,
		session.WithTTL(30*time.Minute),
		session.WithIssuer("idm"),
	)
	if err != nil {
		return nil, err
	}

	decryptor, err := crypto.NewService(tc.DataKey)
	if err != nil {
		return nil, err
	}

	users := storegorm.NewUserStore(tc.DB)
	health := storegorm.NewHealthStore(tc.DB)

	service := auth.NewService(auth.NewFactory(users, decryptor))
	service.Activate(doc.Modules())

	cfg := &config.ServerConfig{
		ListenAddress:     fmt.Sprintf("127.0.0.1:%d", port),
		SessionTTLMinutes: 30,
		SessionIssuer:     "idm",
		AuthConfigFile:    authConfigFile,
		WatchAuthConfig:   true,
	}

	s := server.NewServer(service, sessions, users, health, cfg, tc.DB)
	endpoints.RegisterAll(s)

	ctx, cancel := context.WithCancel(context.Background())

	watcher := config.NewWatcher(authConfigFile, slog.Default(), func(doc *config.Authentication) {
		service.Activate(doc.Modules())
	})
	go func() { _ = watcher.Run(ctx) }()

	go func() { _ = s.Start() }()

	instance := &ServerInstance{
		Server:         s,
		ServerURL:      fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:           port,
		AuthConfigFile: authConfigFile,
		cancel:         cancel,
	}

	if err := waitForServer(instance.ServerURL, 15*time.Second); err != nil {
		instance.Close()
		return nil, err
	}
	return instance, nil
}

// ReplaceAuthenticationDoc rewrites the instance's document atomically,
// the way deployment tooling replaces config files.
func (si *ServerInstance) ReplaceAuthenticationDoc(doc string) error {
	tmp := si.AuthConfigFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, si.AuthConfigFile)
}

// Close stops the watcher and shuts the server down.
func (si *ServerInstance) Close() {
	si.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = si.Server.Shutdown(ctx)
}

// Reconfiguration steps

func (s *StepsContext) aDedicatedServerRunningOnlyTheStaticModule() error {
	instance, err := NewServerInstance(s.tc, staticOnlyDoc)
	if err != nil {
		return err
	}
	s.instance = instance
	return nil
}

func (s *StepsContext) iReplaceItsAuthenticationDocument() error {
	if s.instance == nil {
		return fmt.Errorf("no dedicated server running")
	}
	return s.instance.ReplaceAuthenticationDoc(staticPlusInternalDoc)
}

func (s *StepsContext) itsAuthenticatorsListingSoonIncludes(module string) error {
	if s.instance == nil {
		return fmt.Errorf("no dedicated server running")
	}

	deadline := time.Now().Add(5 * time.Second)
	var last string
	for time.Now().Before(deadline) {
		resp, err := s.tc.HTTPClient.Get(s.instance.ServerURL + "/authenticators")
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr == nil {
				last = string(body)
				if strings.Contains(last, module) {
					return nil
				}
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("authenticators listing never included %q, last response: %s", module, last)
}

func (s *StepsContext) iRequestReauthenticationFromInstance(username, password string) error {
	if s.instance == nil {
		return fmt.Errorf("no dedicated server running")
	}
	return s.reauthenticate(s.instance.ServerURL, username, password, password)
}
