package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantTokenRoundTrip(t *testing.T) {
	token, err := GenerateTenantToken(&TokenClaims{
		TenantID: "acme",
		Role:     "admin",
		Tier:     "growth",
	}, "secret-a", time.Hour)
	require.NoError(t, err)

	mapClaims, err := ValidateJWT(token, "secret-a")
	require.NoError(t, err)

	claims, err := GetTokenClaims(mapClaims)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "growth", claims.Tier)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateTenantToken(&TokenClaims{TenantID: "acme"}, "secret-a", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	require.Error(t, err)
}

func TestValidateJWTRejectsExpiredToken(t *testing.T) {
	token, err := GenerateTenantToken(&TokenClaims{TenantID: "acme"}, "secret-a", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-a")
	require.Error(t, err)
}

func TestGetTokenClaimsRequiresTenant(t *testing.T) {
	token, err := GenerateTenantToken(&TokenClaims{Role: "admin"}, "secret-a", time.Hour)
	require.NoError(t, err)

	mapClaims, err := ValidateJWT(token, "secret-a")
	require.NoError(t, err)

	_, err = GetTokenClaims(mapClaims)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateULIDOrdering(t *testing.T) {
	first := GenerateULID()
	time.Sleep(2 * time.Millisecond)
	second := GenerateULID()

	assert.Len(t, first, 26)
	assert.Less(t, first, second) // later ULIDs sort after earlier ones
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	other, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
