// Package services provides technical concerns like token issuance and validation
package services

import (
	"testing"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "RSA mode without keys",
			useRSAKeys:  true,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				"",
				"",
				tt.secretKey,
			)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	orgID := utils.ToPtr(uint(42))
	accessToken, refreshToken, err := service.GenerateTokens(7, RoleRenter, orgID)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	t.Run("access token claims round-trip", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, RoleRenter, claims.Role)
		require.NotNil(t, claims.OrganizationID)
		assert.Equal(t, uint(42), *claims.OrganizationID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("refresh token carries the refresh type", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("admin token without an organization", func(t *testing.T) {
		adminAccess, _, err := service.GenerateTokens(1, RoleAdmin, nil)
		require.NoError(t, err)

		claims, err := service.ValidateToken(adminAccess)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Nil(t, claims.OrganizationID)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience",
			false, "", "",
			"a-completely-different-signing-key-32ch",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(7, RoleRenter, nil)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreign)
		assert.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(7, RoleRenter, nil)
	require.NoError(t, err)

	t.Run("refresh issues a fresh pair", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		_, _, err := service.RefreshToken(accessToken)
		assert.Error(t, err)
	})
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, _, err := service.GenerateTokens(7, RoleRenter, nil)
	require.NoError(t, err)

	claims, err := service.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.False(t, service.IsTokenRevoked(claims.TokenID))

	require.NoError(t, service.RevokeToken(accessToken))
	assert.True(t, service.IsTokenRevoked(claims.TokenID))

	_, err = service.ValidateToken(accessToken)
	assert.Error(t, err)
}
