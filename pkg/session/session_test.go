package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idm-in-go/pkg/security"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewModuleRequiresKey(t *testing.T) {
	_, err := NewModule(nil)
	assert.Error(t, err)

	_, err = NewModule([]byte{})
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	module, err := NewModule(testKey())
	require.NoError(t, err)

	identity := security.NewIdentity("bjensen").
		WithModule("managed-users").
		WithRoles([]string{"openidm-authorized"}).
		WithAttributes(map[string]interface{}{"component": "managed/user", "id": "uuid-1"})

	token, err := module.Issue(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.NotEmpty(t, token.ID)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), token.ExpiresAt, 5*time.Second)

	got, err := module.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "bjensen", got.AuthenticationID)
	assert.Equal(t, "managed-users", got.Module)
	assert.Equal(t, []string{"openidm-authorized"}, got.Roles)
	assert.Equal(t, "managed/user", got.Attributes["component"])
	assert.True(t, got.HasRole("openidm-authorized"))
	assert.False(t, got.ExpiresAt.IsZero())
}

func TestIssueUsesFreshTokenIDs(t *testing.T) {
	module, err := NewModule(testKey())
	require.NoError(t, err)

	identity := security.NewIdentity("bjensen")

	first, err := module.Issue(identity)
	require.NoError(t, err)
	second, err := module.Issue(identity)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	module, err := NewModule(testKey(), WithTTL(-time.Minute))
	require.NoError(t, err)

	token, err := module.Issue(security.NewIdentity("bjensen"))
	require.NoError(t, err)

	_, err = module.Validate(token.Value)
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestValidateRejectsForeignKey(t *testing.T) {
	issuer, err := NewModule(testKey())
	require.NoError(t, err)

	otherKey := make([]byte, 32)
	for i := range otherKey {
		otherKey[i] = byte(0xff - i)
	}
	validator, err := NewModule(otherKey)
	require.NoError(t, err)

	token, err := issuer.Issue(security.NewIdentity("bjensen"))
	require.NoError(t, err)

	_, err = validator.Validate(token.Value)
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	issuer, err := NewModule(testKey(), WithIssuer("some-other-service"))
	require.NoError(t, err)
	validator, err := NewModule(testKey())
	require.NoError(t, err)

	token, err := issuer.Issue(security.NewIdentity("bjensen"))
	require.NoError(t, err)

	_, err = validator.Validate(token.Value)
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestValidateRejectsWrongSigningMethod(t *testing.T) {
	module, err := NewModule(testKey())
	require.NoError(t, err)

	// Token signed with "none" must never validate, whatever its claims say.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "bjensen",
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	value, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = module.Validate(value)
	assert.True(t, errors.Is(err, ErrInvalidSession))
}

func TestValidateRejectsGarbage(t *testing.T) {
	module, err := NewModule(testKey())
	require.NoError(t, err)

	for _, value := range []string{"", "not-a-token", "a.b.c"} {
		_, err := module.Validate(value)
		assert.True(t, errors.Is(err, ErrInvalidSession), "value %q", value)
	}
}
