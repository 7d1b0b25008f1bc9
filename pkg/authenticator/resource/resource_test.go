package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeStore serves canned objects and records the last query it saw.
type fakeStore struct {
	readObjects  map[string]map[string]interface{}
	queryResults []map[string]interface{}
	queryErr     error

	lastQueryID string
	lastParams  map[string]string
}

func (s *fakeStore) Query(ctx context.Context, resource string, queryID string, params map[string]string) ([]map[string]interface{}, error) {
	s.lastQueryID = queryID
	s.lastParams = params
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.queryResults, nil
}

func (s *fakeStore) Read(ctx context.Context, resource string, id string) (map[string]interface{}, error) {
	return s.readObjects[id], nil
}

// fakeDecryptor treats any map value as encrypted and unwraps it from a
// fixed key.
type fakeDecryptor struct {
	plaintexts map[string]string
	err        error
}

func (d *fakeDecryptor) IsEncrypted(value interface{}) bool {
	_, ok := value.(map[string]interface{})
	return ok
}

func (d *fakeDecryptor) DecryptField(value interface{}) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	wrapper := value.(map[string]interface{})
	return d.plaintexts[wrapper["data"].(string)], nil
}

func queryConfig() Config {
	return Config{
		Name:               "MANAGED_USER",
		QueryOnResource:    "managed/user",
		QueryID:            "credential-query",
		IDProperty:         "username",
		CredentialProperty: "password",
		RolesProperty:      "authzRoles",
		DefaultRoles:       []string{"openidm-authorized"},
	}
}

func TestAuthenticateByQuery(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"_id":      "8e7c",
		"username": "jdoe",
		"password": "secret",
	}}}
	a := New(queryConfig(), store, nil)

	result, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.NoError(t, err)

	assert.True(t, result.Authenticated)
	assert.Equal(t, "credential-query", store.lastQueryID)
	assert.Equal(t, map[string]string{"username": "jdoe"}, store.lastParams)
	assert.Equal(t, "8e7c", result.Attributes["id"])
	assert.Equal(t, "managed/user", result.Attributes["component"])
	assert.Equal(t, []string{"openidm-authorized"}, result.Roles())
}

func TestAuthenticateByRead(t *testing.T) {
	store := &fakeStore{readObjects: map[string]map[string]interface{}{
		"anonymous": {"_id": "anonymous", "password": "anonymous"},
	}}
	a := New(Config{
		Name:            "INTERNAL_USER",
		QueryOnResource: "internal/user",
	}, store, nil)

	result, err := a.Authenticate(context.Background(), "anonymous", "anonymous")
	require.NoError(t, err)
	assert.True(t, result.Authenticated)

	result, err = a.Authenticate(context.Background(), "ghost", "anonymous")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
	assert.Equal(t, "no object for ghost on internal/user", result.Reason)
}

func TestAuthenticateNoMatch(t *testing.T) {
	store := &fakeStore{queryResults: nil}
	a := New(queryConfig(), store, nil)

	result, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
}

func TestAuthenticateAmbiguousMatch(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{
		{"username": "jdoe", "password": "secret"},
		{"username": "jdoe", "password": "other"},
	}}
	a := New(queryConfig(), store, nil)

	_, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched 2 objects")
}

func TestAuthenticateQueryError(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("connection refused")}
	a := New(queryConfig(), store, nil)

	_, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential-query")
	assert.NotContains(t, err.Error(), "secret")
}

func TestAuthenticateNoStoredCredential(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
	}}}
	a := New(queryConfig(), store, nil)

	result, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
	assert.Equal(t, "object for jdoe has no stored credential", result.Reason)
}

func TestAuthenticateWrongCredential(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
		"password": "secret",
	}}}
	a := New(queryConfig(), store, nil)

	result, err := a.Authenticate(context.Background(), "jdoe", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
	assert.NotContains(t, result.Reason, "wrong")
	assert.NotContains(t, result.Reason, "secret")
}

func TestAuthenticateBcryptCredential(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
		"password": string(hash),
	}}}
	a := New(queryConfig(), store, nil)

	result, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.NoError(t, err)
	assert.True(t, result.Authenticated)

	result, err = a.Authenticate(context.Background(), "jdoe", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
}

func TestAuthenticateEncryptedCredential(t *testing.T) {
	stored := map[string]interface{}{"data": "blob-1"}
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
		"password": stored,
	}}}
	decryptor := &fakeDecryptor{plaintexts: map[string]string{"blob-1": "secret"}}
	a := New(queryConfig(), store, decryptor)

	result, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.NoError(t, err)
	assert.True(t, result.Authenticated)

	result, err = a.Authenticate(context.Background(), "jdoe", "wrong")
	require.NoError(t, err)
	assert.False(t, result.Authenticated)
}

func TestAuthenticateDecryptFailure(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
		"password": map[string]interface{}{"data": "blob-1"},
	}}}
	decryptor := &fakeDecryptor{err: errors.New("bad key")}
	a := New(queryConfig(), store, decryptor)

	_, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt stored credential")
}

func TestAuthenticateUnexpectedCredentialType(t *testing.T) {
	store := &fakeStore{queryResults: []map[string]interface{}{{
		"username": "jdoe",
		"password": 12345,
	}}}
	a := New(queryConfig(), store, nil)

	_, err := a.Authenticate(context.Background(), "jdoe", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected type")
}

func TestRolesResolution(t *testing.T) {
	tests := []struct {
		name     string
		object   map[string]interface{}
		expected []string
	}{
		{
			name:     "string slice",
			object:   map[string]interface{}{"authzRoles": []string{"a", "b"}},
			expected: []string{"a", "b"},
		},
		{
			name:     "interface slice from JSON decoding",
			object:   map[string]interface{}{"authzRoles": []interface{}{"a", "b", 3}},
			expected: []string{"a", "b"},
		},
		{
			name:     "comma separated string",
			object:   map[string]interface{}{"authzRoles": "a,b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "defaults when property is absent",
			object:   map[string]interface{}{},
			expected: []string{"openidm-authorized"},
		},
	}

	a := New(queryConfig(), &fakeStore{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.roles(tt.object))
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	a := New(Config{Name: "X", QueryOnResource: "managed/user"}, &fakeStore{}, nil)

	assert.Equal(t, DefaultIDProperty, a.config.IDProperty)
	assert.Equal(t, DefaultCredentialProperty, a.config.CredentialProperty)
}
