package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"idm-in-go/pkg/auth"
)

// ResourceException is the error body returned by the CREST endpoints.
type ResourceException struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithResourceException maps a service error onto the wire. Auth
// errors carry their own category and a message that is safe to return.
// Anything else is reported as a bare 500 so internal details stay out of
// responses.
func respondWithResourceException(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		code := authErr.Category.HTTPStatus()
		respondWithJSON(w, code, ResourceException{
			Code:    code,
			Reason:  http.StatusText(code),
			Message: authErr.Message,
		})
		return
	}

	code := http.StatusInternalServerError
	respondWithJSON(w, code, ResourceException{
		Code:    code,
		Reason:  http.StatusText(code),
		Message: "Internal Server Error",
	})
}
