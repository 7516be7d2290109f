// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/application/services"
	"github.com/AtRiskMedia/blockbuilder-go/internal/domain/entities/document"
)

// statusFor maps service and domain errors onto HTTP status codes
func statusFor(err error) int {
	var schemaErr *document.SchemaError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrInvalidSelection),
		errors.Is(err, document.ErrNodeNotFound):
		return http.StatusNotFound
	case document.IsStructural(err):
		return http.StatusConflict
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, document.ErrUnknownType),
		errors.Is(err, document.ErrInvalidResponsive):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrTooManySessions),
		errors.Is(err, services.ErrAuthNotConfigured),
		errors.Is(err, services.ErrEmailNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Schema errors list every
// violation.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var schemaErr *document.SchemaError
	if errors.As(err, &schemaErr) {
		violations := schemaErr.Violations()
		messages := make([]string, len(violations))
		for i, v := range violations {
			messages[i] = v.Error()
		}
		body["violations"] = messages
	}
	c.JSON(status, body)
}

// respondMutation writes a mutation result. A rejected mutation still reports
// the revision the session holds.
func respondMutation(c *gin.Context, result services.MutationResult, err error) {
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{
			"error":    err.Error(),
			"changed":  false,
			"revision": result.Revision,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondBindError reports an unreadable request body: 413 when it exceeded
// the size limit, 400 otherwise
func respondBindError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": "invalid request body: " + err.Error()})
}
