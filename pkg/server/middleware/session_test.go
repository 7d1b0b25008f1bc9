package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/security"
	"idm-in-go/pkg/session"
)

func testSessions(t *testing.T) *session.Module {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sessions, err := session.NewModule(key)
	require.NoError(t, err)
	return sessions
}

// testService builds a service whose chain accepts anonymous/anonymous.
func testService() *auth.Service {
	service := auth.NewService(auth.NewFactory(nil, nil))
	service.Activate([]auth.ModuleConfig{{
		Name: auth.KindStaticUser,
		Properties: map[string]interface{}{
			"queryOnResource":  "internal/user",
			"username":         "anonymous",
			"password":         "anonymous",
			"defaultUserRoles": []interface{}{"openidm-reg"},
		},
	}})
	return service
}

func TestMiddleware_MissingCredentials(t *testing.T) {
	m := NewSessionAuthenticator(testSessions(t), testService())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("POST", "/authentication", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":401,"reason":"Unauthorized","message":"Access Denied"}`, rec.Body.String())
}

func TestMiddleware_ValidSessionToken(t *testing.T) {
	sessions := testSessions(t)
	m := NewSessionAuthenticator(sessions, testService())

	identity := security.NewIdentity("anonymous").
		WithModule(auth.KindStaticUser).
		WithRoles([]string{"openidm-reg"})
	token, err := sessions.Issue(identity)
	require.NoError(t, err)

	var captured *security.Identity
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = security.GetIdentity(r.Context())
	}))

	req := httptest.NewRequest("POST", "/authentication", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "anonymous", captured.AuthenticationID)
	assert.Equal(t, auth.KindStaticUser, captured.Module)
	assert.True(t, captured.HasRole("openidm-reg"))
}

func TestMiddleware_InvalidSessionToken(t *testing.T) {
	m := NewSessionAuthenticator(testSessions(t), testService())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("POST", "/authentication", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_PrimaryCredentials(t *testing.T) {
	sessions := testSessions(t)
	m := NewSessionAuthenticator(sessions, testService())

	var captured *security.Identity
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = security.GetIdentity(r.Context())
	}))

	req := httptest.NewRequest("POST", "/authentication", nil)
	req.Header.Set(security.HeaderUsername, "anonymous")
	req.Header.Set(security.HeaderPassword, "anonymous")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "anonymous", captured.AuthenticationID)
	assert.Equal(t, []string{"openidm-reg"}, captured.Roles)

	// Successful primary authentication hands back a session token.
	issued := rec.Header().Get(security.HeaderSession)
	require.NotEmpty(t, issued)

	validated, err := sessions.Validate(issued)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", validated.AuthenticationID)
}

func TestMiddleware_RejectedCredentials(t *testing.T) {
	m := NewSessionAuthenticator(testSessions(t), testService())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("POST", "/authentication", nil)
	req.Header.Set(security.HeaderUsername, "anonymous")
	req.Header.Set(security.HeaderPassword, "wrong")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get(security.HeaderSession))
}

func TestMiddleware_ClientIP(t *testing.T) {
	tests := []struct {
		name         string
		trusted      bool
		forwardedFor string
		expected     string
	}{
		{
			name:     "uses the connection address",
			expected: "192.0.2.1",
		},
		{
			name:         "ignores forwarded header from untrusted address",
			forwardedFor: "203.0.113.9",
			expected:     "192.0.2.1",
		},
		{
			name:         "honors forwarded header from trusted proxy",
			trusted:      true,
			forwardedFor: "203.0.113.9",
			expected:     "203.0.113.9",
		},
		{
			name:         "takes the first forwarded address only",
			trusted:      true,
			forwardedFor: "203.0.113.9, 10.0.0.1",
			expected:     "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := testSessions(t)
			m := NewSessionAuthenticator(sessions, testService(),
				WithTrustedProxyCheck(func(ip string) bool { return tt.trusted }),
			)

			token, err := sessions.Issue(security.NewIdentity("anonymous"))
			require.NoError(t, err)

			var transport *security.Transport
			handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				transport, _ = security.GetTransport(r.Context())
			}))

			req := httptest.NewRequest("POST", "/authentication", nil)
			req.Header.Set("Authorization", "Bearer "+token.Value)
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.NotNil(t, transport)
			assert.Equal(t, tt.expected, transport.RemoteAddr)
		})
	}
}
