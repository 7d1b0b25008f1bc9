package audit

import "fmt"

// ReauthenticateEvent records a reauthenticate action against the active
// chain.
type ReauthenticateEvent struct {
	AuthenticationID string
	ClientIP         string
	Module           string
	Success          bool
	ErrorMessage     string
}

func (e ReauthenticateEvent) MessageID() string {
	return "reauthn"
}

func (e ReauthenticateEvent) Message() string {
	subject := e.AuthenticationID
	if subject == "" {
		subject = "unknown subject"
	}
	if e.Success {
		return fmt.Sprintf("%s successfully reauthenticated with module %s", subject, e.Module)
	}
	msg := fmt.Sprintf("%s failed to reauthenticate", subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ReauthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e ReauthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ReauthenticateEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.AuthenticationID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "reauthenticate",
			"result":    result,
		},
	}
	if e.Module != "" {
		sd[SDIDAuth]["module"] = e.Module
	}
	return sd
}
