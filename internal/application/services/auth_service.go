package services

import (
	"errors"
	"time"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAuthNotConfigured  = errors.New("authentication is not configured")
)

// AuthConfig holds the secrets the auth service checks against
type AuthConfig struct {
	JWTSecret          string
	AdminPasswordHash  string
	EditorPasswordHash string
	TokenTTL           time.Duration
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string    `json:"token"`
	Role    string    `json:"role"`
	Expires time.Time `json:"expires"`
}

// AuthService handles password login and JWT validation
type AuthService struct {
	config AuthConfig
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new authentication service
func NewAuthService(config AuthConfig, logger *logging.ChanneledLogger) *AuthService {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &AuthService{config: config, logger: logger}
}

// Enabled reports whether a secret and at least one password hash are set
func (a *AuthService) Enabled() bool {
	return a.config.JWTSecret != "" && (a.config.AdminPasswordHash != "" || a.config.EditorPasswordHash != "")
}

// Login checks password against the admin hash, then the editor hash, and
// issues a token for the first role that matches
func (a *AuthService) Login(password string) (*AuthResult, error) {
	if !a.Enabled() {
		return nil, ErrAuthNotConfigured
	}

	var role string
	switch {
	case a.config.AdminPasswordHash != "" && security.CheckPassword(a.config.AdminPasswordHash, password):
		role = RoleAdmin
	case a.config.EditorPasswordHash != "" && security.CheckPassword(a.config.EditorPasswordHash, password):
		role = RoleEditor
	}
	if role == "" {
		a.logger.LogAuthOperation("login", "password", false, nil)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := security.GenerateRoleToken(role, a.config.JWTSecret, a.config.TokenTTL)
	if err != nil {
		a.logger.Auth().Error("Token generation failed", "error", err.Error())
		return nil, err
	}

	a.logger.LogAuthOperation("login", role, true, map[string]any{"expires": expires})
	return &AuthResult{Token: token, Role: role, Expires: expires}, nil
}

// ValidateToken returns the role carried by a valid editor token
func (a *AuthService) ValidateToken(token string) (string, error) {
	if token == "" || a.config.JWTSecret == "" {
		return "", ErrInvalidToken
	}
	claims, err := security.ValidateJWT(token, a.config.JWTSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	if t, _ := claims["type"].(string); t != security.TokenType {
		return "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role != RoleAdmin && role != RoleEditor {
		return "", ErrInvalidToken
	}
	return role, nil
}
