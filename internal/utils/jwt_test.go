package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateToken(secret, userID, "shipper", time.Hour)
	require.NoError(t, err)

	parsedID, role, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, "shipper", role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", uuid.New(), "customer", time.Hour)
	require.NoError(t, err)

	_, _, err = ParseToken("secret-b", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "customer", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, _, err := ParseToken("secret", "not.a.token")
	assert.Error(t, err)
}
