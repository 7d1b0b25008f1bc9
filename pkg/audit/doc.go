// Package audit provides the security audit trail for the authentication
// service.
//
// Events are written in RFC5424 syslog format to stdout and, when
// IDM_AUDIT_DATABASE_URL is set, persisted to a postgres table as well.
//
// # Event Types
//
//   - AuthenticateEvent: primary authentication against the module chain
//   - ReauthenticateEvent: reauthenticate actions
//   - SessionEvent: session token issue
//   - ActivateEvent: authentication chain swaps
//
// # Usage
//
//	audit.Log(audit.ReauthenticateEvent{
//	    AuthenticationID: authcID,
//	    ClientIP:         remoteAddr,
//	    Module:           result.Module,
//	    Success:          true,
//	})
//
// Events never carry credential values; only identifiers appear in messages
// and structured data. Audit logging is on by default and can be disabled
// with IDM_AUDIT_ENABLED=false.
package audit
