package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "cashdash/internal/errors"
)

// APIKeyHeader is the header scheduled callers authenticate with.
const APIKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards the scheduled-sync endpoints with a shared
// API key. An empty key disables the endpoints entirely.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{"error": gin.H{"code": err.Code, "message": err.Message}})
}
