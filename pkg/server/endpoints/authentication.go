package endpoints

import (
	"net/http"

	"idm-in-go/pkg/audit"
	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/security"
	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/middleware"
	"idm-in-go/pkg/session"
)

// ActionParam is the query parameter naming the action to execute on the
// authentication service.
const ActionParam = "_action"

// RegisterAuthenticationEndpoints registers the /authentication resource.
// Every route runs behind the session middleware, so handlers always find
// an identity and a transport snapshot in the request context.
func RegisterAuthenticationEndpoints(s *server.Server) {
	sessionAuth := middleware.NewSessionAuthenticator(s.Sessions, s.Auth,
		middleware.WithTrustedProxyCheck(s.Config.IsTrustedProxy),
	)

	authRouter := s.Router.PathPrefix("/authentication").Subrouter()
	authRouter.Use(sessionAuth.Middleware)

	authRouter.HandleFunc("", handleAuthenticationAction(s.Auth, s.Sessions)).Methods("POST")
	authRouter.HandleFunc("", handleAuthenticationRead(s.Auth)).Methods("GET")
	authRouter.HandleFunc("", handleAuthenticationUpdate(s.Auth)).Methods("PUT")
	authRouter.HandleFunc("", handleAuthenticationPatch(s.Auth)).Methods("PATCH")
}

// handleAuthenticationAction executes the _action named in the query
// string. A successful reauthenticate refreshes the caller's session token
// on the response.
func handleAuthenticationAction(service *auth.Service, sessions *session.Module) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get(ActionParam)

		result, err := service.Action(r.Context(), action)
		if err != nil {
			respondWithResourceException(w, err)
			return
		}

		refreshSession(w, r, sessions)
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleAuthenticationRead(service *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := service.Read(r.Context())
		if err != nil {
			respondWithResourceException(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleAuthenticationUpdate(service *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := service.Update(r.Context())
		if err != nil {
			respondWithResourceException(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleAuthenticationPatch(service *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := service.Patch(r.Context())
		if err != nil {
			respondWithResourceException(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

// refreshSession issues a fresh session token for the context identity and
// sets it on the response. Issue failures are not fatal to the request; the
// caller keeps its current token.
func refreshSession(w http.ResponseWriter, r *http.Request, sessions *session.Module) {
	identity, ok := security.GetIdentity(r.Context())
	if !ok {
		return
	}

	token, err := sessions.Issue(identity)
	if err != nil {
		return
	}

	w.Header().Set(security.HeaderSession, token.Value)

	clientIP := ""
	if transport, ok := security.GetTransport(r.Context()); ok {
		clientIP = transport.RemoteAddr
	}
	audit.Log(audit.SessionEvent{
		AuthenticationID: identity.AuthenticationID,
		ClientIP:         clientIP,
		SessionID:        token.ID,
		ExpiresAt:        token.ExpiresAt,
	})
}
