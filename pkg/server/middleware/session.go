package middleware

import (
	"net"
	"net/http"
	"strings"

	"idm-in-go/pkg/audit"
	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/security"
	"idm-in-go/pkg/session"
)

// SessionAuthenticator is middleware that establishes the request identity.
//
// A request may present either a session token (Authorization: Bearer) or
// primary credentials in the X-IDM-Username and X-IDM-Password headers.
// Credentials run through the authentication chain; on success a fresh
// session token is issued on the response. Requests with neither, or with
// values that do not verify, are rejected with 401.
type SessionAuthenticator struct {
	sessions     *session.Module
	service      *auth.Service
	logger       auth.Logger
	trustedProxy func(ip string) bool
}

// Option configures the middleware.
type Option func(*SessionAuthenticator)

// WithLogger sets the diagnostic logger.
func WithLogger(logger auth.Logger) Option {
	return func(m *SessionAuthenticator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTrustedProxyCheck lets X-Forwarded-For override the client address
// for requests arriving from an address the check accepts.
func WithTrustedProxyCheck(check func(ip string) bool) Option {
	return func(m *SessionAuthenticator) {
		m.trustedProxy = check
	}
}

// NewSessionAuthenticator creates the session middleware.
func NewSessionAuthenticator(sessions *session.Module, service *auth.Service, opts ...Option) *SessionAuthenticator {
	m := &SessionAuthenticator{
		sessions: sessions,
		service:  service,
		logger:   auth.NullLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware returns an HTTP middleware that authenticates the request and
// stores the identity and transport snapshot in the request context.
func (m *SessionAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transport := security.NewTransport(r)
		transport.RemoteAddr = m.clientIP(r)
		ctx := security.SetTransport(r.Context(), transport)

		if token := bearerToken(r); token != "" {
			identity, err := m.sessions.Validate(token)
			if err != nil {
				m.logger.Debug("session token rejected", "error", err.Error())
				unauthorized(w)
				return
			}
			ctx = security.SetIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		username := r.Header.Get(security.HeaderUsername)
		password := r.Header.Get(security.HeaderPassword)
		if username == "" || password == "" {
			unauthorized(w)
			return
		}

		result := m.service.Authenticate(ctx, username, password)
		if !result.Authenticated {
			audit.Log(audit.AuthenticateEvent{
				AuthenticationID: username,
				ClientIP:         transport.RemoteAddr,
				ErrorMessage:     result.Reason,
			})
			unauthorized(w)
			return
		}

		identity := security.NewIdentity(username).
			WithModule(result.Module).
			WithRoles(result.Roles()).
			WithAttributes(result.Attributes)

		audit.Log(audit.AuthenticateEvent{
			AuthenticationID: username,
			ClientIP:         transport.RemoteAddr,
			Module:           result.Module,
			Success:          true,
		})

		// Hand back a session token so the client can drop the credentials.
		token, err := m.sessions.Issue(identity)
		if err != nil {
			m.logger.Error("session token issue failed", "error", err.Error())
		} else {
			w.Header().Set(security.HeaderSession, token.Value)
			audit.Log(audit.SessionEvent{
				AuthenticationID: identity.AuthenticationID,
				ClientIP:         transport.RemoteAddr,
				SessionID:        token.ID,
				ExpiresAt:        token.ExpiresAt,
			})
		}

		ctx = security.SetIdentity(ctx, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP resolves the client address, honoring X-Forwarded-For only for
// trusted proxies.
func (m *SessionAuthenticator) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if m.trustedProxy != nil && m.trustedProxy(host) {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first := strings.Split(forwarded, ",")[0]
			return strings.TrimSpace(first)
		}
	}
	return host
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return header[len(prefix):]
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":401,"reason":"Unauthorized","message":"Access Denied"}`))
}
