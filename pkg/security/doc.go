// Package security carries the per-request security state through contexts.
//
// Two values travel with every authenticated request:
//   - Identity: who the subject authenticated as, which module accepted
//     them, and their authorization attributes.
//   - Transport: a snapshot of the request headers and client address.
//
// The session middleware populates both before a handler runs:
//
//	ctx = security.SetIdentity(ctx, identity)
//	ctx = security.SetTransport(ctx, security.NewTransport(r))
//
// Downstream code reads them back with GetIdentity and GetTransport. The
// authentication service treats a missing value as a plumbing defect, not a
// client error.
package security
