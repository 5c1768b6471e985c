// unlock clears the login lockout of an account: go run ./cmd/unlock -user <id> -actor <name>.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"credential-lifecycle/internal/config"
	"credential-lifecycle/internal/db"
	lockoutrepo "credential-lifecycle/internal/lockout/repository"
	lockoutservice "credential-lifecycle/internal/lockout/service"
	"credential-lifecycle/internal/logging"
)

func main() {
	userID := flag.String("user", "", "user id to unlock")
	actorID := flag.String("actor", "", "who is unlocking (recorded in the lockout history)")
	reason := flag.String("reason", "", "reason recorded with the unlock")
	flag.Parse()
	if *userID == "" || *actorID == "" {
		flag.Usage()
		log.Fatal("unlock: -user and -actor are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel, "unlock")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	guard := lockoutservice.NewGuard(lockoutrepo.NewPostgresRepository(conn), cfg.LockoutThreshold, cfg.LockoutWindow)
	now := time.Now().UTC()
	if err := guard.Unlock(ctx, *userID, *actorID, *reason, now); err != nil {
		logger.Fatal("unlock", logging.UserID(*userID), zap.Error(err))
	}
	events, err := guard.Events(ctx, *userID)
	if err == nil && len(events) > 0 {
		last := events[len(events)-1]
		logger.Info("unlocked", logging.UserID(*userID), zap.String("kind", string(last.Kind)), zap.String("reason", last.Reason))
		return
	}
	logger.Info("unlocked", logging.UserID(*userID))
}
