package auth

import (
	"context"
	"fmt"

	"idm-in-go/pkg/authenticator"
	"idm-in-go/pkg/metrics"
)

// Chain is an ordered, immutable sequence of authenticators evaluated
// first-match-wins.
type Chain struct {
	authenticators []authenticator.Authenticator
	logger         Logger
}

// NewChain builds a chain over a copy of the given authenticators. An empty
// chain is valid and rejects every attempt without consulting anything.
func NewChain(authenticators ...authenticator.Authenticator) *Chain {
	copied := make([]authenticator.Authenticator, len(authenticators))
	copy(copied, authenticators)
	return &Chain{
		authenticators: copied,
		logger:         NullLogger{},
	}
}

// WithLogger sets the diagnostic logger and returns the chain.
func (c *Chain) WithLogger(logger Logger) *Chain {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Len returns the number of authenticators in the chain.
func (c *Chain) Len() int {
	return len(c.authenticators)
}

// Modules returns the module names in evaluation order.
func (c *Chain) Modules() []string {
	names := make([]string, len(c.authenticators))
	for i, a := range c.authenticators {
		names[i] = a.Name()
	}
	return names
}

// Authenticate evaluates the chain for authcID. The first module to accept
// the credentials wins and ends evaluation. A rejection moves on to the next
// module, and so does a module error: one failing module never blocks the
// ones after it. Each module is consulted at most once; module errors are
// logged, never returned.
func (c *Chain) Authenticate(ctx context.Context, authcID string, credential string) authenticator.Result {
	for _, a := range c.authenticators {
		result, err := attempt(ctx, a, authcID, credential)
		if err != nil {
			c.logger.Error("authentication module failed",
				"module", a.Name(), "authenticationId", authcID, "error", err.Error())
			metrics.ModuleResult(a.Name(), metrics.OutcomeError)
			continue
		}
		if result.Authenticated {
			if result.Module == "" {
				result.Module = a.Name()
			}
			metrics.ModuleResult(a.Name(), metrics.OutcomeSuccess)
			return result
		}
		c.logger.Debug("authentication module rejected credentials",
			"module", a.Name(), "authenticationId", authcID, "reason", result.Reason)
		metrics.ModuleResult(a.Name(), metrics.OutcomeRejected)
	}
	return authenticator.Failure("no module accepted the credentials")
}

// attempt invokes one module and converts a panic into a module error, so a
// faulty module costs itself, not the whole evaluation.
func attempt(ctx context.Context, a authenticator.Authenticator, authcID string, credential string) (result authenticator.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = authenticator.Result{}
			err = fmt.Errorf("module panicked: %v", r)
		}
	}()
	return a.Authenticate(ctx, authcID, credential)
}
