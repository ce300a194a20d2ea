// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. Errors
// always travel in the same envelope so gateway clients and the admin console
// can branch on a stable code instead of parsing messages:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "commitment not found"
//	}
//
// fail() is the single path to an error response, which is also where 5xx
// logging happens. Success bodies are written through ok() and noContent().
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-commitment-engine/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints. RequestID
// echoes the X-Request-ID header so a client-side failure can be matched to
// server logs; Code is one of the constants in errors.go; Message is safe to
// surface to agents in the console.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"commitment not found"`
}

// fail aborts the request with the standard envelope. Responses at 500 and
// above are additionally logged through the request-scoped logger, since a
// failed transition or sweep trigger needs the request context to diagnose.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail for the router's 404 and 405 fallbacks, which live
// outside this package but must answer in the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return, such as
// commitment deletion.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
