package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"credential-lifecycle/internal/config"
	"credential-lifecycle/internal/db"
	"credential-lifecycle/internal/health"
	identityhandler "credential-lifecycle/internal/identity/handler"
	identityservice "credential-lifecycle/internal/identity/service"
	"credential-lifecycle/internal/logging"
	"credential-lifecycle/internal/security"
	"credential-lifecycle/internal/server"
	"credential-lifecycle/internal/telemetry"
	telemetryotel "credential-lifecycle/internal/telemetry/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	tokens, err := tokenProvider(cfg, logger)
	if err != nil {
		return err
	}

	var conn *sql.DB
	var repos identityservice.Repositories
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		repos = identityservice.PostgresRepositories(conn)
	} else {
		logger.Warn("DATABASE_URL is not set; using in-memory repositories")
		repos = identityservice.MemoryRepositories()
	}

	metrics, err := telemetry.NewMetrics(providers.MeterProvider.Meter(cfg.ServiceName))
	if err != nil {
		return err
	}
	auth := identityservice.Build(repos, tokens, cfg.AuthSettings(),
		telemetryotel.NewEventEmitter(providers.LoggerProvider), metrics, logger)

	hs := grpchealth.NewServer()
	var pinger health.Pinger
	if conn != nil {
		pinger = conn
	}
	checker := health.NewChecker(pinger, hs, logger, identityhandler.ServiceName)
	go checker.Run(ctx, health.DefaultInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	s := server.NewGRPCServer(server.Deps{Auth: auth, Health: hs, Logger: logger})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		serveErr <- s.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down gRPC server")
	hs.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		s.Stop()
	}
	// let in-flight access log mirrors reach the exporter
	time.Sleep(telemetry.ShutdownDrainDuration)
	logger.Info("gRPC server stopped")
	return nil
}

// tokenProvider signs with JWT_SECRET, or with a random per-process key outside production.
func tokenProvider(cfg *config.Config, logger *zap.Logger) (*security.TokenProvider, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		logger.Warn("JWT_SECRET is not set; using an ephemeral signing key")
		k, err := security.RandomToken(security.MinKeyLength)
		if err != nil {
			return nil, err
		}
		key = []byte(k)
	}
	return security.NewTokenProvider(key)
}
