package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idm-in-go/pkg/authenticator"
	"idm-in-go/pkg/security"
)

func staticConfig(username string, password string) ModuleConfig {
	return ModuleConfig{
		Name: KindStaticUser,
		Properties: map[string]interface{}{
			"queryOnResource": "internal/user",
			"username":        username,
			"password":        password,
		},
	}
}

// anonymousService builds a service whose chain accepts anonymous/anonymous.
func anonymousService() *Service {
	service := NewService(NewFactory(nil, nil))
	service.Activate([]ModuleConfig{staticConfig("anonymous", "anonymous")})
	return service
}

// reauthContext builds the security and transport context the reauthenticate
// action reads.
func reauthContext(authcID string, credential string) context.Context {
	ctx := security.SetIdentity(context.Background(), security.NewIdentity(authcID))

	header := http.Header{}
	if credential != "" {
		header.Set(security.HeaderReauthPassword, credential)
	}
	return security.SetTransport(ctx, &security.Transport{
		Header:     header,
		RemoteAddr: "192.0.2.1",
	})
}

func TestServiceActivate(t *testing.T) {
	service := anonymousService()

	assert.Equal(t, []string{KindStaticUser}, service.Modules())

	result := service.Authenticate(context.Background(), "anonymous", "anonymous")
	assert.True(t, result.Authenticated)
}

func TestServiceActivateSkipsUnbuildableModules(t *testing.T) {
	logger := &captureLogger{}
	service := NewService(NewFactory(nil, nil), WithLogger(logger))

	service.Activate([]ModuleConfig{
		{Name: "UNREGISTERED", Properties: map[string]interface{}{"queryOnResource": "x"}},
		staticConfig("anonymous", "anonymous"),
	})

	// The broken entry costs itself, not the activation.
	assert.Equal(t, []string{KindStaticUser}, service.Modules())
	assert.NotEmpty(t, logger.errors)
}

func TestServiceActivateReplacesChain(t *testing.T) {
	service := anonymousService()
	service.Activate([]ModuleConfig{staticConfig("admin", "changeit")})

	assert.False(t, service.Authenticate(context.Background(), "anonymous", "anonymous").Authenticated)
	assert.True(t, service.Authenticate(context.Background(), "admin", "changeit").Authenticated)
}

func TestServiceDeactivate(t *testing.T) {
	service := anonymousService()
	service.Deactivate()

	assert.Empty(t, service.Modules())
	assert.False(t, service.Authenticate(context.Background(), "anonymous", "anonymous").Authenticated)
}

func TestServiceActionUnknown(t *testing.T) {
	service := anonymousService()

	_, err := service.Action(reauthContext("anonymous", "anonymous"), "logout")
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CategoryBadRequest, authErr.Category)
	assert.Equal(t, "Action logout on authentication service not supported", authErr.Message)
}

func TestServiceReauthenticateMissingContext(t *testing.T) {
	service := anonymousService()

	_, err := service.Action(context.Background(), ActionReauthenticate)
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CategoryInternal, authErr.Category)
	assert.Equal(t, "Failure to reauthenticate - missing context", authErr.Message)
}

func TestServiceReauthenticateMissingHeaders(t *testing.T) {
	factory := NewFactory(nil, nil)
	factory.Register("NEVER", func(cfg ModuleConfig, deps Collaborators) (authenticator.Authenticator, error) {
		return &neverAuthenticator{t: t, name: "NEVER"}, nil
	})
	service := NewService(factory)
	service.Activate([]ModuleConfig{{
		Name:       "NEVER",
		Properties: map[string]interface{}{"queryOnResource": "x"},
	}})

	cases := []struct {
		name       string
		authcID    string
		credential string
	}{
		{"blank authentication id", "", "secret"},
		{"missing credential header", "jdoe", ""},
		{"both missing", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Action(reauthContext(tc.authcID, tc.credential), ActionReauthenticate)
			require.Error(t, err)

			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, CategoryForbidden, authErr.Category)
			assert.Equal(t, "Reauthentication failed, missing or empty headers", authErr.Message)
		})
	}
}

func TestServiceReauthenticateChainFailure(t *testing.T) {
	service := anonymousService()

	_, err := service.Action(reauthContext("anonymous", "wrong"), ActionReauthenticate)
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CategoryForbidden, authErr.Category)
	assert.Equal(t, "Reauthentication failed for anonymous", authErr.Message)
	assert.NotContains(t, authErr.Message, "wrong")
}

func TestServiceReauthenticateSuccess(t *testing.T) {
	service := anonymousService()

	result, err := service.Action(reauthContext("anonymous", "anonymous"), ActionReauthenticate)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"reauthenticated": true}, result)
}

func TestServiceReadUpdatePatchNotSupported(t *testing.T) {
	service := anonymousService()
	ctx := context.Background()

	cases := []struct {
		name    string
		call    func() (map[string]interface{}, error)
		message string
	}{
		{"read", func() (map[string]interface{}, error) { return service.Read(ctx) }, "Read operations are not supported"},
		{"update", func() (map[string]interface{}, error) { return service.Update(ctx) }, "Update operations are not supported"},
		{"patch", func() (map[string]interface{}, error) { return service.Patch(ctx) }, "Patch operations are not supported"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.call()
			require.Error(t, err)

			var authErr *Error
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, CategoryNotSupported, authErr.Category)
			assert.Equal(t, tc.message, authErr.Message)
		})
	}
}

func TestServiceKinds(t *testing.T) {
	service := anonymousService()
	assert.Equal(t, []string{KindInternalUser, KindManagedUser, KindStaticUser}, service.Kinds())
}
