package httpapi

import (
	"net/http"
	"strings"
	"time"

	"flightsurety-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallerHeader carries the address a request acts for
const CallerHeader = "X-Caller-Address"

const callerKey = "caller"

// RequireCaller rejects requests without a caller address
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := strings.TrimSpace(c.GetHeader(CallerHeader))
		if caller == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": CallerHeader + " header is required",
				"code":  "unauthorized",
			})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// GetCaller returns the address set by RequireCaller
func GetCaller(c *gin.Context) string {
	return c.GetString(callerKey)
}

// RequestLogger logs each request with zap key/values
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"caller", c.GetHeader(CallerHeader),
			"duration", time.Since(start).String())
	}
}
