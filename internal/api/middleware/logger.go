package middleware

import (
	"net/http"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes one access line per API call, tagged with the caller role and
// salesperson scope resolved by Scope. Liveness checks are not logged.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.WithLevel(levelFor(status)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start))

		if role := c.GetString(roleKey); role != "" {
			event = event.Str("role", role)
		}
		if v, ok := c.Get(scopeKey); ok {
			if scope, ok := v.(domain.Scope); ok && !scope.All {
				event = event.Strs("sales_execs", scope.AllowedNames)
			}
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("api request")
	}
}

// levelFor maps a response status to the access log level.
func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Recovery turns a handler panic into a 500 JSON response and logs it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Str("route", c.FullPath()).
					Str("role", c.GetString(roleKey)).
					Msg("recovered from handler panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
