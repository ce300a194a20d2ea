// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the request logger for the commitment
// API. Support traffic routinely carries customer contact data: chat texts are
// ingested through POST /api/v1/messages, and listing filters such as
// assignee_id or channel_id can hold phone-number-like Telegram identifiers.
// The logger scrubs that material from query strings and headers before any
// line reaches the sink.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Helpdesk-Token"},
//	}))
//
// Request and response bodies are never logged, so commitment texts and
// matched promise phrases stay out of the log stream entirely.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders names extra HTTP headers whose values are replaced with
// "[REDACTED]" wholesale. Matching is case-insensitive and merged with the
// built-in sensitive set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

// Built-in identifier patterns. UUIDs must be rewritten before phone numbers,
// otherwise the loose phone pattern eats the digit/hyphen runs inside a UUID
// such as a commitment or message id.
var (
	redactUUIDRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone shapes: "+998 90 123-45-67", "(71) 200-0000", "9981234567".
	redactPhoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func redactPII(s string) string {
	if s == "" {
		return s
	}
	out := redactUUIDRE.ReplaceAllString(s, "[REDACTED:id]")
	out = redactEmailRE.ReplaceAllString(out, "[REDACTED:email]")
	return redactPhoneRE.ReplaceAllString(out, "[REDACTED:phone]")
}

// RedactingLogger returns a Gin middleware that logs each request as one
// structured JSON line with identifier-shaped values scrubbed.
//
// It records method, route pattern, query string, status, response size,
// latency, and request headers. Emails, phone numbers, and UUIDs are
// rewritten in query strings and header values; fully masked headers come
// from the built-in set plus opts.MaskHeaders. Severity follows the response
// status: INFO by default, WARN for 4xx, ERROR for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Prefer the route pattern so log lines group by endpoint rather
		// than by individual commitment id.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		query := redactPII(c.Request.URL.RawQuery)

		headers := make(map[string]string, len(c.Request.Header))
		for name, vals := range c.Request.Header {
			if _, hide := masked[strings.ToLower(name)]; hide {
				headers[name] = "[REDACTED]"
				continue
			}
			headers[name] = redactPII(strings.Join(vals, ", "))
		}

		c.Next()

		status := c.Writer.Status()

		// The response header is authoritative: RequestID overwrites any
		// client-supplied X-Request-ID before the handler runs.
		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
