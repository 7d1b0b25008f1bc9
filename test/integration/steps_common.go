package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"golang.org/x/crypto/bcrypt"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	sessionToken string
	instance     *ServerInstance
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.response = nil
		s.responseBody = nil
		s.sessionToken = ""
		return ctx, s.tc.DB.Exec(`DELETE FROM users`).Error
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if s.instance != nil {
			s.instance.Close()
			s.instance = nil
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^an IDM server is running$`, s.anIDMServerIsRunning)
	sc.Step(`^a managed user "([^"]*)" with password "([^"]*)"$`, s.aManagedUserWithPassword)
	sc.Step(`^a managed user "([^"]*)" with encrypted password "([^"]*)"$`, s.aManagedUserWithEncryptedPassword)
	sc.Step(`^an internal user "([^"]*)" with password "([^"]*)"$`, s.anInternalUserWithPassword)

	// Authentication steps
	sc.Step(`^I request reauthentication as "([^"]*)" with password "([^"]*)"$`, s.iRequestReauthenticationAs)
	sc.Step(`^I request reauthentication as "([^"]*)" with password "([^"]*)" and reauth password "([^"]*)"$`, s.iRequestReauthenticationWithReauthPassword)
	sc.Step(`^I have a session for "([^"]*)" with password "([^"]*)"$`, s.iHaveASessionFor)
	sc.Step(`^I request reauthentication with the session token and password "([^"]*)"$`, s.iRequestReauthenticationWithSession)
	sc.Step(`^I request the authentication action "([^"]*)" as "([^"]*)" with password "([^"]*)"$`, s.iRequestAuthenticationAction)

	// Endpoint steps
	sc.Step(`^I check the server health$`, s.iCheckServerHealth)
	sc.Step(`^I request the configured authenticators$`, s.iRequestConfiguredAuthenticators)
	sc.Step(`^I request the server metrics$`, s.iRequestServerMetrics)

	// Reconfiguration steps against a dedicated server instance
	sc.Step(`^a dedicated server running only the static module$`, s.aDedicatedServerRunningOnlyTheStaticModule)
	sc.Step(`^I replace its authentication document to add the internal user module$`, s.iReplaceItsAuthenticationDocument)
	sc.Step(`^its authenticators listing soon includes "([^"]*)"$`, s.itsAuthenticatorsListingSoonIncludes)
	sc.Step(`^I request reauthentication from it as "([^"]*)" with password "([^"]*)"$`, s.iRequestReauthenticationFromInstance)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Step(`^the response body should not contain "([^"]*)"$`, s.theResponseBodyShouldNotContain)
	sc.Step(`^the response should confirm reauthentication$`, s.theResponseShouldConfirmReauthentication)
	sc.Step(`^I should receive a session token$`, s.iShouldReceiveASessionToken)
	sc.Step(`^I should not receive a session token$`, s.iShouldNotReceiveASessionToken)
}

// do sends the request and captures the response for later assertions.
func (s *StepsContext) do(req *http.Request) error {
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return err
}

// Background steps

func (s *StepsContext) anIDMServerIsRunning() error {
	resp, err := s.tc.HTTPClient.Get(s.tc.ServerURL + "/health")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (s *StepsContext) aManagedUserWithPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	return s.tc.Users.Create(context.Background(), "managed/user", username, map[string]interface{}{
		"username": username,
		"password": string(hash),
		"roles":    []interface{}{"openidm-authorized"},
	})
}

func (s *StepsContext) aManagedUserWithEncryptedPassword(username, password string) error {
	wrapper, err := s.tc.Crypto.EncryptField(password)
	if err != nil {
		return err
	}
	return s.tc.Users.Create(context.Background(), "managed/user", username, map[string]interface{}{
		"username": username,
		"password": wrapper,
		"roles":    []interface{}{"openidm-authorized"},
	})
}

func (s *StepsContext) anInternalUserWithPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	return s.tc.Users.Create(context.Background(), "internal/user", username, map[string]interface{}{
		"password": string(hash),
	})
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldContain(expected string) error {
	if !strings.Contains(string(s.responseBody), expected) {
		return fmt.Errorf("expected body to contain %q, got %q", expected, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldNotContain(unexpected string) error {
	if strings.Contains(string(s.responseBody), unexpected) {
		return fmt.Errorf("expected body not to contain %q, got %q", unexpected, string(s.responseBody))
	}
	return nil
}
