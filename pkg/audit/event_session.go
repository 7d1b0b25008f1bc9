package audit

import (
	"fmt"
	"time"
)

// SessionEvent records the issue of a session token.
type SessionEvent struct {
	AuthenticationID string
	ClientIP         string
	SessionID        string
	ExpiresAt        time.Time
}

func (e SessionEvent) MessageID() string {
	return "session"
}

func (e SessionEvent) Message() string {
	return fmt.Sprintf("session issued for %s, expires %s",
		e.AuthenticationID, e.ExpiresAt.UTC().Format(time.RFC3339))
}

func (e SessionEvent) Severity() Severity {
	return SeverityInfo
}

func (e SessionEvent) Facility() int {
	return FacilityAuthPriv
}

func (e SessionEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.AuthenticationID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDSession: {
			"id":      e.SessionID,
			"expires": e.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}
}
