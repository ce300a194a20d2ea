package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestFail_ServerErrorLogsWithRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	scoped := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-sweep-500")
		c.Set("logger", &scoped)
		c.Next()
	})
	r.POST("/api/v1/admin/sweep", func(c *gin.Context) {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, "sweep pass aborted")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/sweep", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if resp.RequestID != "rid-sweep-500" || resp.Code != ErrCodeSweepFailed || resp.Message != "sweep pass aborted" {
		t.Fatalf("envelope = %+v", resp)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "sweep pass aborted") {
		t.Fatalf("5xx must hit the request-scoped logger, got: %s", buf.String())
	}
}

func TestFail_ClientErrorSkipsErrorLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	scoped := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-missing")
		c.Set("logger", &scoped)
		c.Next()
	})
	r.GET("/api/v1/commitments/:id", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "commitment not found")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/commitments/ghost", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if resp.RequestID != "rid-missing" || resp.Code != ErrCodeNotFound {
		t.Fatalf("envelope = %+v", resp)
	}
	// A 404 is routine; only 5xx goes through the error log path.
	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("unexpected error log for 404: %s", buf.String())
	}
}

func TestSuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/api/v1/commitments", func(c *gin.Context) {
		ok(c, http.StatusCreated, gin.H{"id": "c-99", "status": "active"})
	})
	r.DELETE("/api/v1/commitments/:id", func(c *gin.Context) {
		noContent(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/commitments", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["id"] != "c-99" || body["status"] != "active" {
		t.Fatalf("body = %#v", body)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodDelete, "/api/v1/commitments/c-99", nil))
	if w2.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w2.Code)
	}
	if w2.Body.Len() != 0 {
		t.Fatalf("204 must have an empty body, got %q", w2.Body.String())
	}
}
