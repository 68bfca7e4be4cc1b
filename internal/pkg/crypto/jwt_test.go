package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-for-token-round-trips"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("u-1", "amina@example.org", "Amina", "Focal Person", "Org A", testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "amina@example.org", claims.Email)
	assert.Equal(t, "Amina", claims.Name)
	assert.Equal(t, "Focal Person", claims.Role)
	assert.Equal(t, "Org A", claims.Organization)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("u-1", "amina@example.org", "Amina", "Focal Person", "Org A", testSecret, 24)
	require.NoError(t, err)

	_, err = ParseToken(token, "a-different-secret")
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}
