package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")

	// Engine policy
	t.Setenv("BUSINESS_TZ", "Asia/Samarkand")
	t.Setenv("VAGUE_WINDOW", "20m")
	t.Setenv("ACTION_WINDOW", "3h")
	t.Setenv("REMINDER_LEAD", "45m")
	t.Setenv("VAGUE_REMINDER_LEAD", "10m")
	t.Setenv("OVERDUE_GRACE_MIN", "5m")
	t.Setenv("OVERDUE_GRACE_MAX", "12h")
	t.Setenv("ESCALATE_LEVEL", "3")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("RECONCILE_WINDOW", "48h")
	t.Setenv("RECONCILE_LIMIT", "50")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" {
		t.Fatalf("db path unexpected: %+v", cfg.DBPath)
	}

	// Engine policy
	e := cfg.Engine
	if e.BusinessTZ != "Asia/Samarkand" ||
		e.VagueWindow != 20*time.Minute ||
		e.ActionWindow != 3*time.Hour ||
		e.ReminderLead != 45*time.Minute ||
		e.VagueReminderLead != 10*time.Minute ||
		e.OverdueGraceMin != 5*time.Minute ||
		e.OverdueGraceMax != 12*time.Hour ||
		e.EscalateLevel != 3 ||
		e.SweepInterval != 30*time.Second ||
		e.ReconcileWindow != 48*time.Hour ||
		e.ReconcileLimit != 50 {
		t.Fatalf("engine fields unexpected: %+v", e)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_EngineDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	e := cfg.Engine
	if e.BusinessTZ != "Asia/Tashkent" ||
		e.VagueWindow != 30*time.Minute ||
		e.ActionWindow != 4*time.Hour ||
		e.OverdueGraceMin != 15*time.Minute ||
		e.OverdueGraceMax != 24*time.Hour ||
		e.EscalateLevel != 2 ||
		e.SweepInterval != time.Minute ||
		e.ReconcileWindow != 24*time.Hour ||
		e.ReconcileLimit != 200 {
		t.Fatalf("engine defaults unexpected: %+v", e)
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"nonpositive timeout", map[string]string{"READ_TIMEOUT": "-1s"}, "timeouts"},
		{"zero MAX_HEADER_BYTES", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank DB_PATH", map[string]string{"DB_PATH": " "}, "DB_PATH"},
		{"blank BUSINESS_TZ", map[string]string{"BUSINESS_TZ": " "}, "BUSINESS_TZ"},
		{"nonpositive VAGUE_WINDOW", map[string]string{"VAGUE_WINDOW": "-5m"}, "VAGUE_WINDOW"},
		{"negative REMINDER_LEAD", map[string]string{"REMINDER_LEAD": "-1m"}, "reminder leads"},
		{"grace min above max", map[string]string{"OVERDUE_GRACE_MIN": "48h"}, "OVERDUE_GRACE_MIN"},
		{"ESCALATE_LEVEL below one", map[string]string{"ESCALATE_LEVEL": "0"}, "ESCALATE_LEVEL"},
		{"nonpositive SWEEP_INTERVAL", map[string]string{"SWEEP_INTERVAL": "-1m"}, "SWEEP_INTERVAL"},
		{"nonpositive RECONCILE_WINDOW", map[string]string{"RECONCILE_WINDOW": "-1h"}, "RECONCILE_WINDOW"},
		{"RECONCILE_LIMIT below one", map[string]string{"RECONCILE_LIMIT": "0"}, "RECONCILE_LIMIT"},
		{"negative RATE_RPS", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"RATE_BURST below one", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"negative HSTS_MAX_AGE", map[string]string{"HSTS_MAX_AGE": "-1h"}, "HSTS_MAX_AGE"},
		{"sampler out of range", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"api/v2/": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(""); got != nil {
		t.Fatalf("empty input: %#v", got)
	}
	got := splitCSV(" a ,, b,")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("splitCSV: %#v", got)
	}
}
