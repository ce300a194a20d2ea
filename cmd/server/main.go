// Command server runs the commitment detection and escalation engine: the
// HTTP API, the SQLite-backed store, and the periodic sweep scheduler.
//
// Configuration comes from the environment (optionally a .env file in dev).
// See internal/config for the full list of variables.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-commitment-engine/internal/config"
	httpapi "github.com/tbourn/go-commitment-engine/internal/http"
	"github.com/tbourn/go-commitment-engine/internal/notify"
	"github.com/tbourn/go-commitment-engine/internal/observability"
	"github.com/tbourn/go-commitment-engine/internal/repo"
	"github.com/tbourn/go-commitment-engine/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title        Commitment Engine API
// @version      1.0
// @description  Commitment detection and escalation engine for support inboxes.
// @BasePath     /api/v1
func main() {
	// Dev convenience; ignore error when no .env exists.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := time.LoadLocation(cfg.Engine.BusinessTZ)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Engine.BusinessTZ).Msg("invalid BUSINESS_TZ")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	svc, sweeper := httpapi.BuildServices(httpapi.Deps{
		DB:       db,
		Location: loc,
		Notifier: &notify.LogNotifier{Logger: log.Logger},
	}, cfg)
	sweeper.Logger = log.Logger

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, sweeper, cfg)

	// Scheduled sweep + reconcile. Jitter the first pass so replicas restarted
	// together do not stampede the database.
	go func() {
		jitter := time.Duration(rand.Int63n(int64(cfg.Engine.SweepInterval)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter):
		}
		ticker := time.NewTicker(cfg.Engine.SweepInterval)
		defer ticker.Stop()
		for {
			if _, err := sweeper.Run(ctx, time.Now().UTC()); err != nil {
				log.Error().Err(err).Msg("sweep pass failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
