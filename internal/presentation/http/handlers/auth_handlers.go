package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// PostLogin handles POST /api/v1/auth/login - admin/editor authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	h.logger.Auth().Debug("Received login request", "method", c.Request.Method, "path", c.Request.URL.Path)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	result, err := h.authService.Login(req.Password)
	if err != nil {
		h.logger.Auth().Info("Login failed", "error", err.Error(), "duration", time.Since(start))
		respondError(c, err)
		return
	}

	h.logger.Auth().Info("Login succeeded", "role", result.Role, "duration", time.Since(start))
	c.JSON(http.StatusOK, result)
}

// GetAuthStatus handles GET /api/v1/auth/status - reports whether login is needed
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.authService.Enabled()})
}
