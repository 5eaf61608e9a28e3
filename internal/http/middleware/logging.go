// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation ID, panic recovery and the accessor for
// the request-scoped logger that RedactingLogger attaches:
//
//   - RequestID() gives every request a correlation ID, reusing a well-formed
//     X-Request-ID from the client and generating one otherwise.
//   - Recovery() converts panics into the JSON error envelope, logging the
//     stack with the request's logger.
//   - LoggerFrom() retrieves the request-scoped logger in handlers
//     (e.g., lg.Info().Str("sermon_id", id).Msg("...")). Services reach the
//     same logger through zerolog.Ctx on the request context.
//
// Order: RequestID(), RedactingLogger, Recovery().
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	ctxKeyLogger    = "logger"

	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// Client IDs end up in logs and response headers; anything else is replaced.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID stores the correlation ID in the Gin context and echoes it in
// the X-Request-ID response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !requestIDPattern.MatchString(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery turns a panic into a 500. The JSON envelope is written only when
// the handler has not started the response yet:
//
//	{"success": false, "code": "internal_error", "message": "Server Error", "request_id": "..."}
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("route", routeLabel(c)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			AbortWithError(c, http.StatusInternalServerError, "internal_error", "Server Error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// none was attached. The result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate cuts s to max bytes plus an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
