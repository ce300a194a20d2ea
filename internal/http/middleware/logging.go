// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation and recovery pieces of the chain:
//
//   - RequestID() gives every request a stable correlation ID, propagated via
//     X-Request-ID and stored in the Gin context. Escalation notifications and
//     sweep reports reference commitments by id, so the correlation ID is what
//     ties an ingest log line to the commitment rows it produced.
//   - Logger() emits structured access logs and attaches a request-scoped
//     zerolog.Logger so handlers can log with the request fields already bound
//     (e.g. lg.Info().Str("commitment_id", id)).
//   - Recovery() converts panics into JSON 500 responses carrying the
//     correlation ID, with the stack trace going to logs only.
//   - LoggerFrom() retrieves the request-scoped logger for handlers and
//     services.
//
// The router installs RequestID first, then the redacting access logger, then
// Recovery, so panic reports and error envelopes always carry the correlation
// ID. Query strings are truncated before logging to keep long listing filters
// from bloating log lines. The request-scoped logger lives under the "logger"
// Gin context key.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// agentIDKey is the Gin context key for the authenticated support agent,
	// when an upstream gateway identifies one.
	agentIDKey = "agentID"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
)

// RequestID attaches (or propagates) a correlation identifier per request.
//
// An incoming X-Request-ID is reused so that a bot gateway redelivering a
// message keeps its correlation id across attempts; otherwise a new UUIDv4 is
// generated. The ID is written back to the response header and stored in the
// Gin context under "requestID". Install this first so everything downstream
// can rely on it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes a structured access log for each request and response.
//
// It records method, route, remote IP, user agent, referer, correlation ID,
// agent ID (when an upstream gateway set one), request size, response status,
// latency, and bytes written. A request-scoped zerolog.Logger carrying the
// request fields is stored under the "logger" context key for downstream
// code. Log level follows the outcome: error for 5xx or collected Gin errors,
// warn for 4xx, info otherwise.
//
// Place this after RequestID() so logs include the correlation ID.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		agent, _ := c.Get(agentIDKey)
		path := c.FullPath()
		if path == "" {
			// Route not matched, 404s land here.
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("agent_id", asString(agent)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			// ContentLength can be -1 if unknown.
			Int64("bytes_in", c.Request.ContentLength).
			Logger()

		c.Set("logger", &l)

		c.Next()

		ev := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery intercepts panics, logs a stack trace, and returns a JSON 500.
//
// The error body matches the handlers' envelope shape:
//
//	{ "request_id": "...", "code": "internal_error", "message": "internal server error" }
//
// If the handler already wrote a response the body is left alone and only the
// status is forced. Place this after Logger() so the panic is captured with
// structured context.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger, or a plain fallback
// when Logger() did not run. Callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString converts a context value to a string, empty when not a string.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, appending an ellipsis. max <= 0 disables the
// cap. Byte truncation can split a rune, which is acceptable for log output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
