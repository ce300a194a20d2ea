package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-commitment-engine/internal/config"
	"github.com/tbourn/go-commitment-engine/internal/domain"
	"github.com/tbourn/go-commitment-engine/internal/http/middleware"
	"github.com/tbourn/go-commitment-engine/internal/notify"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.InboundMessage{}, &domain.Commitment{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   50,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
		Engine: config.EngineConfig{
			BusinessTZ:        "UTC",
			VagueWindow:       30 * time.Minute,
			ActionWindow:      4 * time.Hour,
			ReminderLead:      time.Hour,
			VagueReminderLead: 30 * time.Minute,
			OverdueGraceMin:   15 * time.Minute,
			OverdueGraceMax:   24 * time.Hour,
			EscalateLevel:     2,
			SweepInterval:     time.Minute,
			ReconcileWindow:   24 * time.Hour,
			ReconcileLimit:    100,
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	svc, sweeper := BuildServices(Deps{
		DB:       newTestDB(t),
		Location: time.UTC,
		Notifier: notify.LogNotifier{},
	}, cfg)
	RegisterRoutes(r, svc, sweeper, cfg)
	return r
}

func TestRegisterRoutes_Health_Metrics_Fallbacks(t *testing.T) {
	r := newTestRouter(t)

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// Unknown route → 404 JSON envelope
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	var e map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e["code"] != "not_found" {
		t.Fatalf("404 envelope: %s (err=%v)", w.Body.String(), err)
	}

	// Wrong method on a known route → 405
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/messages", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /messages = %d", w.Code)
	}
}

func TestRegisterRoutes_IngestThroughFullStack(t *testing.T) {
	r := newTestRouter(t)

	payload := map[string]string{
		"id":          "full-1",
		"channel_id":  "tg-100",
		"sender_id":   "agent-7",
		"sender_role": "agent",
		"text":        "отвечу через 20 минут",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdempotencyKey, "full-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest = %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.HeaderReplayed) != "" {
		t.Fatalf("first delivery flagged as replay")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}

	// Redelivery: the replay detector sees the stored commitment
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderIdempotencyKey, "full-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replay = %d", w.Code)
	}
	if w.Header().Get(middleware.HeaderReplayed) != "true" {
		t.Fatalf("replay header missing")
	}
	var resp struct {
		Created    bool `json:"created"`
		Commitment *struct {
			ID string `json:"id"`
		} `json:"commitment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Created || resp.Commitment == nil {
		t.Fatalf("replay body unexpected: %s", w.Body.String())
	}

	// The list endpoint sees it through the same stack
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/commitments", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if w.Header().Get("ETag") == "" {
		t.Fatalf("list response missing ETag")
	}
}

func TestRegisterRoutes_SweepEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sweep", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sweep = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp["report"]; !ok {
		t.Fatalf("missing report: %s", w.Body.String())
	}
}

func TestRegisterRoutes_CORSAllowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://ops.example.com"}
	svc, sweeper := BuildServices(Deps{DB: newTestDB(t), Location: time.UTC}, cfg)
	RegisterRoutes(r, svc, sweeper, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.com" {
		t.Fatalf("allowlisted origin: got %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin must get no ACAO, got %q", got)
	}
}

func TestGroupWithPrefix_RootAndNamed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, prefix := range []string{"", "/"} {
		r := gin.New()
		g := groupWithPrefix(r, prefix)
		g.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("prefix %q: /x = %d", prefix, w.Code)
		}
	}

	r := gin.New()
	g := groupWithPrefix(r, "/api/v2")
	g.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/api/v2/x = %d", w.Code)
	}
}
