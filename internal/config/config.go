// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, rate limiting, the
// commitment engine policy windows, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-commitment-engine")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// EngineConfig holds the commitment engine policy knobs: deadline windows,
// reminder lead times, escalation thresholds, and sweep/reconcile bounds.
// The business time zone is an explicit input here; calendar phrases like
// "tomorrow morning" are resolved in this zone, never in a hard-coded offset.
type EngineConfig struct {
	BusinessTZ string // IANA zone name, e.g. "Asia/Tashkent"

	VagueWindow  time.Duration // deadline window for vague deferrals
	ActionWindow time.Duration // default window for action promises / fallbacks

	ReminderLead      time.Duration // deadline minus this = reminderAt (concrete/action)
	VagueReminderLead time.Duration // shorter lead for vague commitments

	OverdueGraceMin time.Duration // lower clamp on the per-commitment grace period
	OverdueGraceMax time.Duration // upper clamp on the per-commitment grace period
	EscalateLevel   int           // escalation level that flips status to "escalated"

	SweepInterval   time.Duration // scheduled sweep cadence
	ReconcileWindow time.Duration // how far back reconciliation scans
	ReconcileLimit  int           // max messages examined per reconcile pass
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path

	// Engine policy
	Engine EngineConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "app.db"),

		// Engine policy
		Engine: EngineConfig{
			BusinessTZ:        getenv("BUSINESS_TZ", "Asia/Tashkent"),
			VagueWindow:       getdur("VAGUE_WINDOW", 30*time.Minute),
			ActionWindow:      getdur("ACTION_WINDOW", 4*time.Hour),
			ReminderLead:      getdur("REMINDER_LEAD", 60*time.Minute),
			VagueReminderLead: getdur("VAGUE_REMINDER_LEAD", 30*time.Minute),
			OverdueGraceMin:   getdur("OVERDUE_GRACE_MIN", 15*time.Minute),
			OverdueGraceMax:   getdur("OVERDUE_GRACE_MAX", 24*time.Hour),
			EscalateLevel:     getint("ESCALATE_LEVEL", 2),
			SweepInterval:     getdur("SWEEP_INTERVAL", time.Minute),
			ReconcileWindow:   getdur("RECONCILE_WINDOW", 24*time.Hour),
			ReconcileLimit:    getint("RECONCILE_LIMIT", 200),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-commitment-engine"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if err := validateEngine(cfg.Engine); err != nil {
		return cfg, err
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// validateEngine checks the engine policy block. The time zone name is
// validated at startup when the location is actually loaded; here we only
// require it to be non-empty.
func validateEngine(e EngineConfig) error {
	if strings.TrimSpace(e.BusinessTZ) == "" {
		return errors.New("BUSINESS_TZ must not be empty")
	}
	if e.VagueWindow <= 0 || e.ActionWindow <= 0 {
		return errors.New("VAGUE_WINDOW and ACTION_WINDOW must be positive durations")
	}
	if e.ReminderLead < 0 || e.VagueReminderLead < 0 {
		return errors.New("reminder leads must be >= 0")
	}
	if e.OverdueGraceMin <= 0 || e.OverdueGraceMax < e.OverdueGraceMin {
		return errors.New("OVERDUE_GRACE_MIN must be > 0 and <= OVERDUE_GRACE_MAX")
	}
	if e.EscalateLevel < 1 {
		return errors.New("ESCALATE_LEVEL must be >= 1")
	}
	if e.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be > 0")
	}
	if e.ReconcileWindow <= 0 {
		return errors.New("RECONCILE_WINDOW must be > 0")
	}
	if e.ReconcileLimit < 1 {
		return errors.New("RECONCILE_LIMIT must be >= 1")
	}
	return nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
