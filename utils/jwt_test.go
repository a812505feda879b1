package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovision/config"
	"renovision/models"
)

func TestGenerateJWTTokenTypes(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	company := &models.Company{ID: "company-1"}
	access, refresh, err := GenerateJWTToken(company)
	require.NoError(t, err)

	accessClaims, err := ParseJWTToken(access)
	require.NoError(t, err)
	assert.Equal(t, "company-1", accessClaims.CompanyID)
	assert.Equal(t, TokenTypeAccess, accessClaims.TokenType)

	refreshClaims, err := ParseJWTToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestRefreshTokensRejectsAccessToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	access, _, err := GenerateJWTToken(&models.Company{ID: "company-1"})
	require.NoError(t, err)

	_, _, err = RefreshTokens(access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a refresh token")
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	access, _, err := GenerateJWTToken(&models.Company{ID: "company-1"})
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "other-secret"
	defer func() { config.AppConfig.JWTSecret = "test-secret" }()

	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}
