package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employeedir/core/internal/infrastructure/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:   true,
		Secret:    "0123456789abcdef0123",
		Issuer:    "employeedir",
		ExpiresIn: time.Hour,
	}
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	token, expiresAt, err := svc.Issue("hr-admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "hr-admin", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestAuthServiceRejectsForeignSecret(t *testing.T) {
	other := testAuthConfig()
	other.Secret = "another-secret-of-enough-length"
	token, _, err := NewAuthService(other).Issue("mallory")
	require.NoError(t, err)

	_, err = NewAuthService(testAuthConfig()).Validate(token)
	assert.Error(t, err)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(testAuthConfig())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue("hr-admin")
	require.NoError(t, err)

	_, err = NewAuthService(testAuthConfig()).Validate(token)
	assert.Error(t, err)
}

func TestAuthServiceRejectsWrongIssuer(t *testing.T) {
	other := testAuthConfig()
	other.Issuer = "someone-else"
	token, _, err := NewAuthService(other).Issue("hr-admin")
	require.NoError(t, err)

	_, err = NewAuthService(testAuthConfig()).Validate(token)
	assert.Error(t, err)
}

func TestAuthServiceIssueRequiresSecretAndSubject(t *testing.T) {
	_, _, err := NewAuthService(config.AuthConfig{}).Issue("x")
	assert.Error(t, err)

	_, _, err = NewAuthService(testAuthConfig()).Issue("")
	assert.Error(t, err)
}
