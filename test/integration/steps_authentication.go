package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"idm-in-go/pkg/security"
)

// Authentication steps

func (s *StepsContext) iRequestReauthenticationAs(username, password string) error {
	return s.reauthenticate(s.tc.ServerURL, username, password, password)
}

func (s *StepsContext) iRequestReauthenticationWithReauthPassword(username, password, reauthPassword string) error {
	return s.reauthenticate(s.tc.ServerURL, username, password, reauthPassword)
}

func (s *StepsContext) reauthenticate(serverURL, username, password, reauthPassword string) error {
	req, err := http.NewRequest("POST", serverURL+"/authentication?_action=reauthenticate", nil)
	if err != nil {
		return err
	}
	req.Header.Set(security.HeaderUsername, username)
	req.Header.Set(security.HeaderPassword, password)
	req.Header.Set(security.HeaderReauthPassword, reauthPassword)
	return s.do(req)
}

func (s *StepsContext) iHaveASessionFor(username, password string) error {
	if err := s.reauthenticate(s.tc.ServerURL, username, password, password); err != nil {
		return err
	}
	token := s.response.Header.Get(security.HeaderSession)
	if token == "" {
		return fmt.Errorf("no session token issued: status %d, body %s", s.response.StatusCode, string(s.responseBody))
	}
	s.sessionToken = token
	return nil
}

func (s *StepsContext) iRequestReauthenticationWithSession(reauthPassword string) error {
	if s.sessionToken == "" {
		return fmt.Errorf("no session token held")
	}
	req, err := http.NewRequest("POST", s.tc.ServerURL+"/authentication?_action=reauthenticate", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.sessionToken)
	req.Header.Set(security.HeaderReauthPassword, reauthPassword)
	return s.do(req)
}

func (s *StepsContext) iRequestAuthenticationAction(action, username, password string) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+"/authentication?_action="+action, nil)
	if err != nil {
		return err
	}
	req.Header.Set(security.HeaderUsername, username)
	req.Header.Set(security.HeaderPassword, password)
	return s.do(req)
}

// Endpoint steps

func (s *StepsContext) iCheckServerHealth() error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+"/health", nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iRequestConfiguredAuthenticators() error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+"/authenticators", nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

func (s *StepsContext) iRequestServerMetrics() error {
	req, err := http.NewRequest("GET", s.tc.ServerURL+"/metrics", nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

// Response steps

func (s *StepsContext) theResponseShouldConfirmReauthentication() error {
	var result map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if ok, _ := result["reauthenticated"].(bool); !ok {
		return fmt.Errorf("expected reauthenticated=true, got %s", string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iShouldReceiveASessionToken() error {
	token := s.response.Header.Get(security.HeaderSession)
	if token == "" {
		return fmt.Errorf("no session token in response")
	}
	if len(strings.Split(token, ".")) != 3 {
		return fmt.Errorf("session token is not a JWT: %q", token)
	}
	return nil
}

func (s *StepsContext) iShouldNotReceiveASessionToken() error {
	if token := s.response.Header.Get(security.HeaderSession); token != "" {
		return fmt.Errorf("unexpected session token issued: %q", token)
	}
	return nil
}
