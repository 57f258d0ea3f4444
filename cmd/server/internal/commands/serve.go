package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/patrol/internal/auth"
	"github.com/wolfeidau/patrol/internal/logger"
	"github.com/wolfeidau/patrol/internal/patrol"
	"github.com/wolfeidau/patrol/internal/server"
	"github.com/wolfeidau/patrol/internal/store"
	memorystore "github.com/wolfeidau/patrol/internal/store/memory"
	postgresstore "github.com/wolfeidau/patrol/internal/store/postgres"
	"github.com/wolfeidau/patrol/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"PATROL_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"PATROL_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"PATROL_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"PATROL_CORS_ORIGINS"`
	Compress    bool     `help:"gzip responses for clients that accept it" default:"true" negatable:"" env:"PATROL_COMPRESS"`

	// Domain configuration
	ReportTimeZone string `help:"IANA time zone that defines a report day" default:"UTC" env:"PATROL_REPORT_TZ"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"PATROL_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	Token     TokenFlags     `embed:"" prefix:"token-"`
	Seed      SeedFlags      `embed:"" prefix:"seed-"`
	Telemetry TelemetryFlags `embed:""`
}

func (c *ServeCmd) Validate() error {
	if (c.Cert == "") != (c.Key == "") {
		return errors.New("TLS certificate and key must be set together (--cert and --key)")
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if err := c.Seed.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if c.StoreType == "postgres" {
		return c.PostgresStore.Validate()
	}
	return nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	logger.SetGlobal(log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	loc, err := time.LoadLocation(c.ReportTimeZone)
	if err != nil {
		return fmt.Errorf("invalid report time zone %q: %w", c.ReportTimeZone, err)
	}

	if c.Telemetry.Enabled {
		log.Info().Msg("Telemetry is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName:    "patrol-server",
			Version:        globals.Version,
			SampleRatio:    c.Telemetry.SampleRatio,
			ExportInterval: c.Telemetry.ExportInterval,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	var st store.Store
	switch c.StoreType {
	case "postgres":
		pgStore, err := postgresstore.NewStore(ctx, c.PostgresStore.storeConfig())
		if err != nil {
			return fmt.Errorf("failed to create postgres store: %w", err)
		}
		st = pgStore
		log.Info().Bool("auto_migrate", c.PostgresStore.AutoMigrate).Msg("Using PostgreSQL store")
	default:
		st = memorystore.NewStore()
		log.Info().Msg("Using in-memory store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	svc := patrol.NewService(st, patrol.WithLocation(loc))

	if c.Seed.Username != "" {
		created, err := svc.SeedSuperadmin(ctx, c.Seed.Username, c.Seed.Password)
		if err != nil {
			return fmt.Errorf("failed to seed superadmin: %w", err)
		}
		log.Info().Str("username", c.Seed.Username).Bool("created", created).Msg("Superadmin seeded")
	}

	issuer, err := auth.NewTokenIssuer(c.Token.Secret, c.Token.TTL)
	if err != nil {
		return err
	}
	verifier, err := auth.NewTokenVerifier(c.Token.Secret)
	if err != nil {
		return err
	}

	handler := server.NewServer(svc, issuer, verifier).Handler(log, server.HandlerOptions{CORSOrigins: c.CORSOrigins})
	if c.Compress {
		handler = gzhttp.GzipHandler(handler)
	}
	if c.Telemetry.Enabled {
		handler = otelhttp.NewHandler(handler, "patrol-api")
	}

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Msg("Listening")
		if c.Cert != "" {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
