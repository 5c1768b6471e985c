// seed creates a development account through the authenticator so its credential row and
// lockout row are written exactly as a real registration would write them.
// Idempotent: registering an existing email is accepted without changes.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"credential-lifecycle/internal/config"
	"credential-lifecycle/internal/db"
	identityservice "credential-lifecycle/internal/identity/service"
	"credential-lifecycle/internal/logging"
	"credential-lifecycle/internal/security"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "Dev-Password-123"
	devTenantID  = "dev-tenant-001"
)

func main() {
	email := flag.String("email", devUserEmail, "account email")
	password := flag.String("password", devPassword, "account password (12+ characters with upper, lower, digit and symbol)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if cfg.IsProduction() {
		log.Fatal("seed: refusing to run with APP_ENV=production")
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel, "seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	// Register never issues tokens, so a throwaway signing key is enough.
	key, err := security.RandomToken(security.MinKeyLength)
	if err != nil {
		logger.Fatal("signing key", zap.Error(err))
	}
	tokens, err := security.NewTokenProvider([]byte(key))
	if err != nil {
		logger.Fatal("token provider", zap.Error(err))
	}
	auth := identityservice.Build(identityservice.PostgresRepositories(conn), tokens, cfg.AuthSettings(), nil, nil, logger)

	res, err := auth.Register(ctx, identityservice.RegisterInput{
		TenantID:    devTenantID,
		GivenNames:  "Dev",
		FamilyNames: "User",
		Email:       *email,
		Password:    *password,
		IP:          "127.0.0.1",
	})
	if err != nil {
		logger.Fatal("register", zap.Error(err))
	}
	if res.UserID == "" {
		logger.Info("seed: account already exists", zap.String("email", *email))
		return
	}
	logger.Info("seed: account created", zap.String("email", *email), logging.UserID(res.UserID))
}
