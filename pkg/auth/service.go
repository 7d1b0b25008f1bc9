package auth

import (
	"context"
	"fmt"
	"sync"

	"idm-in-go/pkg/audit"
	"idm-in-go/pkg/authenticator"
	"idm-in-go/pkg/metrics"
	"idm-in-go/pkg/security"
)

// ActionReauthenticate is the only action the authentication service
// supports.
const ActionReauthenticate = "reauthenticate"

// Service is the authentication orchestrator. It owns the active chain,
// rebuilds it on activation, and serves the reauthenticate action.
type Service struct {
	factory *Factory
	logger  Logger

	mu    sync.RWMutex
	chain *Chain
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a service with an empty chain. Call Activate to build
// one from configuration.
func NewService(factory *Factory, opts ...ServiceOption) *Service {
	s := &Service{
		factory: factory,
		logger:  NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.chain = NewChain().WithLogger(s.logger)
	return s
}

// Activate rebuilds the chain wholesale from the given module configs and
// swaps it in. The write lock covers build and swap, so activations are
// serialized and readers observe either the old chain or the fully built new
// one. Ineligible entries and modules that fail to construct are skipped;
// they cost themselves, never the activation.
func (s *Service) Activate(modules []ModuleConfig) {
	filtered := FilterModules(modules)
	if excluded := len(modules) - len(filtered); excluded > 0 {
		s.logger.Debug("excluded ineligible authentication modules",
			"configured", len(modules), "excluded", excluded)
	}

	s.mu.Lock()
	authenticators := make([]authenticator.Authenticator, 0, len(filtered))
	for _, cfg := range filtered {
		a, err := s.factory.New(cfg)
		if err != nil {
			s.logger.Error("skipping authentication module",
				"module", cfg.Name, "error", err.Error())
			continue
		}
		authenticators = append(authenticators, a)
	}
	chain := NewChain(authenticators...).WithLogger(s.logger)
	s.chain = chain
	s.mu.Unlock()

	s.logger.Info("authentication chain activated", "modules", chain.Modules())
	metrics.ChainActivated(chain.Len())
	audit.Log(audit.ActivateEvent{Modules: chain.Modules()})
}

// Deactivate swaps in the empty chain. Subsequent evaluations fail without
// consulting anything.
func (s *Service) Deactivate() {
	s.mu.Lock()
	s.chain = NewChain().WithLogger(s.logger)
	s.mu.Unlock()

	s.logger.Info("authentication chain deactivated")
	metrics.ChainActivated(0)
	audit.Log(audit.ActivateEvent{})
}

// currentChain snapshots the active chain. An evaluation keeps its snapshot
// for its whole run, so a concurrent Activate never changes a chain
// mid-evaluation.
func (s *Service) currentChain() *Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chain
}

// Modules returns the active chain's module names in evaluation order.
func (s *Service) Modules() []string {
	return s.currentChain().Modules()
}

// Kinds returns the module kinds registered with the factory.
func (s *Service) Kinds() []string {
	return s.factory.Kinds()
}

// Authenticate evaluates the active chain for the given credentials. It is
// the primary authentication entry point used by the session middleware.
func (s *Service) Authenticate(ctx context.Context, authcID string, credential string) authenticator.Result {
	return s.currentChain().Authenticate(ctx, authcID, credential)
}

// Action executes a named action against the authentication service. Only
// the reauthenticate action is supported. A fault while processing the
// action surfaces as an internal error, never as a raw panic.
func (s *Service) Action(ctx context.Context, action string) (result map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("authentication action panicked", "action", action, "panic", fmt.Sprint(r))
			result = nil
			err = Internal("Failure to reauthenticate", fmt.Errorf("panic: %v", r))
		}
	}()
	if action != ActionReauthenticate {
		return nil, BadRequest("Action %s on authentication service not supported", action)
	}
	return s.reauthenticate(ctx)
}

// reauthenticate re-validates the calling subject's credentials against the
// active chain. The subject comes from the security context, the credential
// from the reauth header in the transport context. The credential value
// never appears in errors, logs, or audit records.
func (s *Service) reauthenticate(ctx context.Context) (map[string]interface{}, error) {
	identity, haveIdentity := security.GetIdentity(ctx)
	transport, haveTransport := security.GetTransport(ctx)
	if !haveIdentity || !haveTransport {
		return nil, Internal("Failure to reauthenticate - missing context", nil)
	}

	authcID := identity.AuthenticationID
	credential := transport.Header.Get(security.HeaderReauthPassword)
	if authcID == "" || credential == "" {
		metrics.Reauthentication(metrics.OutcomeRejected)
		audit.Log(audit.ReauthenticateEvent{
			AuthenticationID: authcID,
			ClientIP:         transport.RemoteAddr,
			ErrorMessage:     "missing or empty headers",
		})
		return nil, Forbidden("Reauthentication failed, missing or empty headers")
	}

	result := s.Authenticate(ctx, authcID, credential)
	if !result.Authenticated {
		metrics.Reauthentication(metrics.OutcomeRejected)
		audit.Log(audit.ReauthenticateEvent{
			AuthenticationID: authcID,
			ClientIP:         transport.RemoteAddr,
			ErrorMessage:     result.Reason,
		})
		return nil, Forbidden("Reauthentication failed for %s", authcID)
	}

	metrics.Reauthentication(metrics.OutcomeSuccess)
	audit.Log(audit.ReauthenticateEvent{
		AuthenticationID: authcID,
		ClientIP:         transport.RemoteAddr,
		Module:           result.Module,
		Success:          true,
	})
	return map[string]interface{}{"reauthenticated": true}, nil
}

// Read is not supported on the authentication service.
func (s *Service) Read(ctx context.Context) (map[string]interface{}, error) {
	return nil, NotSupported("Read operations are not supported")
}

// Update is not supported on the authentication service.
func (s *Service) Update(ctx context.Context) (map[string]interface{}, error) {
	return nil, NotSupported("Update operations are not supported")
}

// Patch is not supported on the authentication service.
func (s *Service) Patch(ctx context.Context) (map[string]interface{}, error) {
	return nil, NotSupported("Patch operations are not supported")
}
