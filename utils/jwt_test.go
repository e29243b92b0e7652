package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConfigureJWTRoundTrip(t *testing.T) {
	ConfigureJWT("test-signing-secret", 2*time.Hour)

	userID := primitive.NewObjectID()
	pair, err := GenerateTokenPair(userID, "alice@example.com", "alice", "user")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64((2 * time.Hour).Seconds()), pair.ExpiresIn)

	claims, err := ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	ConfigureJWT("first-secret", time.Hour)
	token, err := GenerateAccessToken(primitive.NewObjectID(), "bob@example.com", "bob", "user")
	require.NoError(t, err)

	ConfigureJWT("second-secret", time.Hour)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
