package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	adminHash, err := security.HashPassword("admin-pass")
	require.NoError(t, err)
	editorHash, err := security.HashPassword("editor-pass")
	require.NoError(t, err)
	return NewAuthService(AuthConfig{
		JWTSecret:          testSecret,
		AdminPasswordHash:  adminHash,
		EditorPasswordHash: editorHash,
		TokenTTL:           time.Hour,
	}, nil)
}

func TestLoginRoles(t *testing.T) {
	auth := newAuthService(t)

	tests := []struct {
		password string
		role     string
	}{
		{"admin-pass", RoleAdmin},
		{"editor-pass", RoleEditor},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			res, err := auth.Login(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.role, res.Role)
			assert.WithinDuration(t, time.Now().Add(time.Hour), res.Expires, time.Minute)

			role, err := auth.ValidateToken(res.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.role, role)
		})
	}

	_, err := auth.Login("guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutConfiguration(t *testing.T) {
	auth := NewAuthService(AuthConfig{JWTSecret: testSecret}, nil)
	assert.False(t, auth.Enabled())

	_, err := auth.Login("anything")
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
}

func TestValidateTokenRejections(t *testing.T) {
	auth := newAuthService(t)

	foreign, _, err := security.GenerateRoleToken(RoleAdmin, "another-secret", time.Hour)
	require.NoError(t, err)
	expired, _, err := security.GenerateRoleToken(RoleAdmin, testSecret, -time.Minute)
	require.NoError(t, err)
	unknownRole, _, err := security.GenerateRoleToken("owner", testSecret, time.Hour)
	require.NoError(t, err)
	wrongType, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": RoleAdmin,
		"type": "visitor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tokens := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": foreign,
		"expired":      expired,
		"unknown role": unknownRole,
		"wrong type":   wrongType,
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
