package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken_Success(t *testing.T) {
	userID := uuid.New()
	email := "test@example.com"
	secret := "test-secret"

	token, err := GenerateToken(userID, email, secret, 1*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, email, claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "test@example.com", "secret1", 1*time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret2")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Expired(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "test@example.com", "secret", -1*time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := ValidateToken("malformed-token", "secret")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Empty(t *testing.T) {
	_, err := ValidateToken("", "secret")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}
