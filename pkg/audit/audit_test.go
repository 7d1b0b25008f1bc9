package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := ReauthenticateEvent{
		AuthenticationID: "jdoe",
		ClientIP:         "192.168.1.1",
		Module:           "MANAGED_USER",
		Success:          true,
	}

	logger.Log(event)

	output := buf.String()

	// Check RFC5424 format components
	if !strings.HasPrefix(output, "<") {
		t.Error("Expected PRI prefix in output")
	}
	if !strings.Contains(output, "idm") {
		t.Error("Expected app name 'idm' in output")
	}
	if !strings.Contains(output, "reauthn") {
		t.Error("Expected message ID 'reauthn' in output")
	}
	if !strings.Contains(output, "jdoe") {
		t.Error("Expected authentication id in output")
	}
	if !strings.Contains(output, "192.168.1.1") {
		t.Error("Expected client IP in output")
	}
	if !strings.Contains(output, "successfully reauthenticated") {
		t.Error("Expected success message in output")
	}
}

func TestReauthenticateEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     ReauthenticateEvent
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name: "successful reauthentication",
			event: ReauthenticateEvent{
				AuthenticationID: "jdoe",
				ClientIP:         "10.0.0.1",
				Module:           "MANAGED_USER",
				Success:          true,
			},
			wantMsg:   "successfully reauthenticated",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "reauthn",
		},
		{
			name: "failed reauthentication",
			event: ReauthenticateEvent{
				AuthenticationID: "jdoe",
				ClientIP:         "10.0.0.1",
				Success:          false,
				ErrorMessage:     "credential mismatch for jdoe",
			},
			wantMsg:   "failed to reauthenticate",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "reauthn",
		},
		{
			name: "missing headers",
			event: ReauthenticateEvent{
				ClientIP:     "10.0.0.1",
				ErrorMessage: "missing or empty headers",
			},
			wantMsg:   "unknown subject failed to reauthenticate",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "reauthn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), tt.wantFac)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestAuthenticateEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   AuthenticateEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name: "successful authentication",
			event: AuthenticateEvent{
				AuthenticationID: "jdoe",
				ClientIP:         "10.0.0.1",
				Module:           "MANAGED_USER",
				Success:          true,
			},
			wantMsg: "successfully authenticated with module MANAGED_USER",
			wantSev: SeverityInfo,
		},
		{
			name: "failed authentication",
			event: AuthenticateEvent{
				AuthenticationID: "jdoe",
				ClientIP:         "10.0.0.1",
				Success:          false,
				ErrorMessage:     "no module accepted the credentials",
			},
			wantMsg: "failed to authenticate",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.MessageID() != "authn" {
				t.Errorf("MessageID() = %v, want 'authn'", tt.event.MessageID())
			}
		})
	}
}

func TestActivateEvent(t *testing.T) {
	event := ActivateEvent{Modules: []string{"MANAGED_USER", "INTERNAL_USER"}}

	if event.MessageID() != "activate" {
		t.Errorf("MessageID() = %v, want 'activate'", event.MessageID())
	}
	if !strings.Contains(event.Message(), "MANAGED_USER, INTERNAL_USER") {
		t.Errorf("Message() = %q, want module names", event.Message())
	}
	if event.Severity() != SeverityNotice {
		t.Errorf("Severity() = %v, want SeverityNotice", event.Severity())
	}
	if event.Facility() != FacilityAuth {
		t.Errorf("Facility() = %v, want FacilityAuth", event.Facility())
	}

	sd := event.StructuredData()
	if sd[SDIDAction]["count"] != "2" {
		t.Errorf("StructuredData count = %v, want 2", sd[SDIDAction]["count"])
	}
}

func TestActivateEventEmpty(t *testing.T) {
	event := ActivateEvent{}

	if !strings.Contains(event.Message(), "deactivated") {
		t.Errorf("Message() = %q, want 'deactivated'", event.Message())
	}
}

func TestStructuredDataEscaping(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := ReauthenticateEvent{
		AuthenticationID: `jdoe"quoted]`,
		ClientIP:         "10.0.0.1",
		Success:          false,
		ErrorMessage:     "credential mismatch",
	}

	logger.Log(event)

	output := buf.String()
	if !strings.Contains(output, `\"quoted\]`) {
		t.Errorf("Expected escaped structured data value, got: %s", output)
	}
}

func TestEventsNeverCarryCredentials(t *testing.T) {
	// The reauth event carries the failure reason, never the credential.
	event := ReauthenticateEvent{
		AuthenticationID: "jdoe",
		ClientIP:         "10.0.0.1",
		ErrorMessage:     "credential mismatch for jdoe",
	}

	for _, params := range event.StructuredData() {
		for _, value := range params {
			if strings.Contains(value, "password") || strings.Contains(value, "secret") {
				t.Errorf("structured data value %q looks like credential material", value)
			}
		}
	}
}
