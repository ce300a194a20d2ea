// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, replay detection, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-commitment-engine/docs"
	"github.com/tbourn/go-commitment-engine/internal/config"
	"github.com/tbourn/go-commitment-engine/internal/deadline"
	"github.com/tbourn/go-commitment-engine/internal/detect"
	"github.com/tbourn/go-commitment-engine/internal/http/handlers"
	"github.com/tbourn/go-commitment-engine/internal/http/middleware"
	"github.com/tbourn/go-commitment-engine/internal/notify"
	"github.com/tbourn/go-commitment-engine/internal/repo"
	"github.com/tbourn/go-commitment-engine/internal/services"
)

// Deps bundles the dependencies the router injects into services. The
// business time zone location is resolved once at startup and threaded
// through here so every deadline resolution shares it.
type Deps struct {
	DB       *gorm.DB
	Location *time.Location
	Notifier notify.Notifier
}

// BuildServices constructs the application services from configuration. It is
// exported so the sweep scheduler in cmd/server shares the exact instances
// the HTTP layer serves.
func BuildServices(d Deps, cfg config.Config) (*services.CommitmentService, *services.SweepService) {
	cls := detect.New()
	res := deadline.New(d.Location).
		WithWindows(cfg.Engine.VagueWindow, cfg.Engine.ActionWindow)

	svc := services.NewCommitmentService(d.DB, cls, res)
	svc.ReminderLead = cfg.Engine.ReminderLead
	svc.VagueReminderLead = cfg.Engine.VagueReminderLead

	sweeper := &services.SweepService{
		DB:               d.DB,
		Svc:              svc,
		Notifier:         d.Notifier,
		GraceMin:         cfg.Engine.OverdueGraceMin,
		GraceMax:         cfg.Engine.OverdueGraceMax,
		EscalateLevel:    cfg.Engine.EscalateLevel,
		ReconcileWindow:  cfg.Engine.ReconcileWindow,
		ReconcileLimit:   cfg.Engine.ReconcileLimit,
		EscalatableBatch: cfg.Engine.ReconcileLimit,
	}
	return svc, sweeper
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), replay detection
// and rate limiting, CORS and security headers, health and metrics endpoints,
// and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Replay detector (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, svc *services.CommitmentService, sweeper *services.SweepService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Replay detection (before rate limiting)
	db := svc.DB
	r.Use(middleware.ReplayDetector(
		middleware.ReplayOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, sourceMessageID string, now time.Time) (bool, error) {
			c, err := repo.GetCommitmentByMessage(ctx, db, sourceMessageID)
			if err != nil || c == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAgentOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderReplayed},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderReplayed},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in; keep disabled in production unless needed)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc, sweeper)

	// Listing responses carry repeated text fields; compress them.
	zip := gzip.Gzip(gzip.DefaultCompression)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Ingest
		api.POST("/messages", h.IngestMessage)

		// Commitments
		api.POST("/commitments", h.CreateCommitment)
		api.GET("/commitments", zip, h.ListCommitments)
		api.GET("/commitments/:id", h.GetCommitment)
		api.DELETE("/commitments/:id", h.DeleteCommitment)

		// Operator actions
		api.POST("/commitments/:id/complete", h.CompleteCommitment)
		api.POST("/commitments/:id/extend", h.ExtendCommitment)
		api.POST("/commitments/:id/dismiss", h.DismissCommitment)
		api.POST("/commitments/:id/cancel", h.CancelCommitment)
		api.POST("/commitments/:id/reassign", h.ReassignCommitment)

		// Diagnostics
		api.POST("/detect", h.DetectCommitment)
		api.POST("/sweep", h.RunSweep)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
