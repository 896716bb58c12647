package security_test

import (
	"testing"

	"device-auth-server/config"
	"device-auth-server/internal/security"

	"github.com/stretchr/testify/assert"
)

func TestVerificationToken_RoundTrip(t *testing.T) {
	svc := security.NewVerificationTokenService(&config.VerificationConfig{
		SecretKey: "test-secret",
		TokenTTL:  "24h",
	})

	token, err := svc.GenerateToken("u1", "user@example.com")
	assert.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserUUID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestVerificationToken_Expired(t *testing.T) {
	svc := security.NewVerificationTokenService(&config.VerificationConfig{
		SecretKey: "test-secret",
		TokenTTL:  "-1h",
	})

	token, err := svc.GenerateToken("u1", "user@example.com")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestVerificationToken_WrongKey(t *testing.T) {
	issuer := security.NewVerificationTokenService(&config.VerificationConfig{
		SecretKey: "test-secret",
		TokenTTL:  "24h",
	})
	validator := security.NewVerificationTokenService(&config.VerificationConfig{
		SecretKey: "another-secret",
		TokenTTL:  "24h",
	})

	token, err := issuer.GenerateToken("u1", "user@example.com")
	assert.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}
