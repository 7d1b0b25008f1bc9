package audit

import "fmt"

// AuthenticateEvent records a primary authentication attempt against the
// module chain.
type AuthenticateEvent struct {
	AuthenticationID string
	ClientIP         string
	Module           string
	Success          bool
	ErrorMessage     string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with module %s", e.AuthenticationID, e.Module)
	}
	msg := fmt.Sprintf("%s failed to authenticate", e.AuthenticationID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
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
			"operation": "authenticate",
			"result":    result,
		},
	}
	if e.Module != "" {
		sd[SDIDAuth]["module"] = e.Module
	}
	return sd
}
