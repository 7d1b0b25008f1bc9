// Package auth implements the authentication service core: module config
// filtering, authenticator construction, and chain evaluation.
//
// The service is driven entirely by configuration. An ordered list of module
// config entries is filtered down to the eligible ones, each surviving entry
// is handed to a registered constructor keyed by its module kind, and the
// resulting authenticators form an ordered chain. Evaluation walks the chain
// and stops at the first module that accepts the credentials.
//
// # Lifecycle
//
// A Service starts with an empty chain, which rejects everything. Activate
// rebuilds the chain wholesale from a module config list and swaps it in
// atomically; in-flight evaluations keep the chain they started with.
// Deactivate swaps the empty chain back in.
//
//	factory := auth.NewFactory(users, decryptor)
//	service := auth.NewService(factory)
//	service.Activate(doc.Modules())
//
// # Failure isolation
//
// A misconfigured entry costs itself, never the chain: config filtering drops
// invalid entries, construction errors skip the module, and an authenticator
// that returns an error during evaluation is recorded and stepped over. The
// only way the whole chain fails is for every module to reject or for the
// chain to be empty.
//
// # Error categories
//
// Operations return *Error values carrying a Category that the HTTP layer
// maps to a status code. Error messages may name the authentication id but
// never the credential value.
package auth
