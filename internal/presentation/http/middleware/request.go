package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/blockbuilder-go/internal/infrastructure/security"
)

const requestIDHeader = "X-Request-ID"

// RequestMiddleware tags each request with an id and times it
func RequestMiddleware(perfTracker *performance.Tracker, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = security.GenerateULID()
		}
		c.Header(requestIDHeader, requestID)

		operation := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			operation = c.Request.Method + " unmatched"
		}
		marker := perfTracker.StartOperation(operation, c.Param("id"))
		marker.AddMetadata("requestId", requestID)

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			marker.SetSuccess(false)
		}
		marker.Complete()

		logger.System().Debug("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"requestId", requestID,
			"duration", time.Since(start))
	}
}

// BodyLimit caps the request body at limitMB megabytes
func BodyLimit(limitMB int) gin.HandlerFunc {
	limit := int64(limitMB) << 20
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
