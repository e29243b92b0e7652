package middleware

import (
	"fmt"
	"time"

	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware logs every request with latency, status, and the
// authenticated user when one is attached.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		var userID string
		if user, exists := utils.GetUserFromContext(c); exists {
			userID = user.ID.Hex()
		}

		entry := logrus.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency":     latency.String(),
			"client_ip":   c.ClientIP(),
			"method":      method,
			"path":        path,
			"user_id":     userID,
			"request_id":  c.GetString("request_id"),
		})

		message := fmt.Sprintf("%s %s %d", method, path, statusCode)

		switch {
		case statusCode >= 500:
			entry.Error(message)
		case statusCode >= 400:
			entry.Warn(message)
		default:
			entry.Info(message)
		}
	}
}

// RequestIDMiddleware attaches a unique id to each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID, _ = utils.GenerateSecureToken(16)
		}

		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// SecurityHeadersMiddleware adds baseline security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
