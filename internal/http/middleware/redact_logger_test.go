package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureGlobalLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureGlobalLogger(t)

	r := gin.New()
	// Upstream request-id middleware stand-in: the logger should prefer the
	// id stamped on the response over whatever the client sent.
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-mw")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Helpdesk-Token"}}))
	r.GET("/api/v1/commitments/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// A listing-style query carrying a customer email, a phone-shaped channel
	// id, and a UUID commitment id.
	q := "assignee=dilshod@helpdesk.example&channel_id=998901234567&ref=7b1e9c2a-3f44-4d6b-9a0e-1f2a3b4c5d6e"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/commitments/7b1e?"+q, nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	req.Header.Set("X-Helpdesk-Token", "hd-secret")
	req.Header.Set("X-Agent-Contact", "reach me at dilshod@helpdesk.example or 90 123-4567")
	req.Header.Set("X-Request-ID", "rid-client")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected info line, got: %s", logs)
	}
	if !strings.Contains(logs, `"path":"/api/v1/commitments/:id"`) {
		t.Fatalf("expected route pattern in path, got: %s", logs)
	}
	if !strings.Contains(logs, `"request_id":"rid-mw"`) {
		t.Fatalf("response request id must win over the client header: %s", logs)
	}
	for _, marker := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(logs, marker) {
			t.Fatalf("missing %s in query redaction: %s", marker, logs)
		}
	}
	if strings.Contains(logs, "dilshod@helpdesk.example") {
		t.Fatalf("raw email leaked to logs: %s", logs)
	}
	if !strings.Contains(logs, `"Authorization":"[REDACTED]"`) {
		t.Fatalf("Authorization must be fully masked: %s", logs)
	}
	if !strings.Contains(logs, `"X-Helpdesk-Token":"[REDACTED]"`) {
		t.Fatalf("configured header must be fully masked: %s", logs)
	}
	if !strings.Contains(logs, `"X-Agent-Contact":"reach me at [REDACTED:email] or [REDACTED:phone]"`) {
		t.Fatalf("expected pattern redaction inside plain header, got: %s", logs)
	}
}

func TestRedactingLogger_SeverityTracksStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureGlobalLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.POST("/api/v1/messages", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.POST("/api/v1/admin/sweep", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	// No response-side request id here, so the logger falls back to the
	// client header.
	badReq := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
	badReq.Header.Set("X-Request-ID", "rid-400")
	r.ServeHTTP(httptest.NewRecorder(), badReq)

	boomReq := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sweep", nil)
	boomReq.Header.Set("X-Request-ID", "rid-500")
	r.ServeHTTP(httptest.NewRecorder(), boomReq)

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-400"`) {
		t.Fatalf("4xx must log at warn with fallback request id: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-500"`) {
		t.Fatalf("5xx must log at error with fallback request id: %s", logs)
	}
}
